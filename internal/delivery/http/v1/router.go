package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"go-freelance-backend/config"
	"go-freelance-backend/internal/delivery/http/middleware"
	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/internal/notification"
	"go-freelance-backend/internal/usecase"
	"go-freelance-backend/pkg/security"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	EntrepriseUC  domain.EntrepriseUsecase
	FreelanceUC   domain.FreelanceUsecase
	MissionUC     domain.MissionUsecase
	CandidatureUC domain.CandidatureUsecase
	Broker        notification.Broker
	LoginTracker  *security.LoginTracker
	Logger        *zap.Logger
	HealthUC      usecase.HealthUsecase
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	if cfg.CSRFEnabled {
		v1.Use(middleware.CSRFMiddleware(cfg.CookieSecure))
	}

	// Health Check
	v1.GET("/health", healthHandler(deps.HealthUC))

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authLimiter := middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	uploadLimiter := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(window))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthUC))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, deps.LoginTracker, cfg, authLimiter)
		NewEntrepriseHandler(protected, deps.EntrepriseUC)
		NewFreelanceHandler(protected, deps.FreelanceUC, uploadLimiter)
		NewMissionHandler(protected, deps.MissionUC, deps.CandidatureUC)
		NewCandidatureHandler(protected, deps.CandidatureUC)
		NewNotificationStreamHandler(protected, deps.Broker, cfg.CORSAllowedOrigins)
	}

	return r
}

func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		services, healthy := healthUC.Check(c.Request.Context())
		if !healthy {
			response.Success(c, http.StatusServiceUnavailable, "Degraded", services)
			return
		}
		response.Success(c, http.StatusOK, "System operational", services)
	}
}
