package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-freelance-backend/config"
	_ "go-freelance-backend/docs" // Important for Swagger
	v1 "go-freelance-backend/internal/delivery/http/v1"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/internal/notification"
	"go-freelance-backend/internal/repository/postgres"
	"go-freelance-backend/internal/usecase"
	"go-freelance-backend/pkg/antivirus"
	"go-freelance-backend/pkg/auth"
	"go-freelance-backend/pkg/database"
	"go-freelance-backend/pkg/email"
	"go-freelance-backend/pkg/logger"
	"go-freelance-backend/pkg/redis"
	"go-freelance-backend/pkg/security"
	"go-freelance-backend/pkg/session"
	"go-freelance-backend/pkg/storage"
	"go-freelance-backend/pkg/validation"
)

// @title           Freelance Marketplace API
// @version         1.0
// @description     Missions, freelance and entreprise profiles, candidatures and live notifications.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// 2. Setup Logger
	logger.Init(cfg.Environment)
	defer logger.Sync()
	log := logger.Log
	security.SetDefault(security.NewSecurityLogger(log))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("Starting freelance backend", zap.String("port", cfg.Port))

	// 3. Setup Database
	ctx := context.Background()
	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DBUrl); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	checks := map[string]usecase.Pinger{"postgres": dbPool.Ping}

	// 4. Redis backs sessions, notifications, rate limiting and the login tracker.
	// Without it everything falls back to process-local implementations.
	var (
		sessions    domain.SessionStore
		broker      notification.Broker
		redisClient goredis.Cmdable
	)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		log.Warn("Redis unavailable, using in-memory sessions and notifications", zap.Error(err))
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		memBroker := notification.NewMemoryBroker()
		defer memBroker.Close()
		broker = memBroker
	} else {
		client := redis.Client()
		defer redis.Close()
		redisClient = client
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
		broker = notification.NewRedisBroker(client)
		checks["redis"] = redis.HealthCheck
	}

	loginTracker := security.NewLoginTracker(redisClient, security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
	}, security.DefaultLogger())

	// 5. Setup Email Service
	var mailer domain.Mailer
	if email.IsConfigured(cfg) {
		mailer = email.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP not configured - confirmation emails are written to the log")
		mailer = email.NewLogSender(log)
	}

	// 6. Object storage for freelance media
	var mediaStorage domain.ObjectStorage
	s3Storage, err := storage.NewS3Storage(ctx, storage.Config{
		Provider:        storage.Provider(cfg.StorageProvider),
		Endpoint:        cfg.StorageEndpoint,
		Bucket:          cfg.StorageBucket,
		Region:          cfg.StorageRegion,
		AccessKeyID:     cfg.StorageAccessKey,
		SecretAccessKey: cfg.StorageSecretKey,
		PublicURL:       cfg.StoragePublicURL,
	})
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		log.Warn("Object storage not configured - photo and CV uploads are disabled")
	case err != nil:
		log.Fatal("Failed to init object storage", zap.Error(err))
	default:
		mediaStorage = s3Storage
		checks["storage"] = s3Storage.Ping
	}

	var scanner domain.MalwareScanner
	if cfg.ClamAVAddress != "" {
		clamd := antivirus.NewClamd(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		scanner = clamd
		checks["clamav"] = clamd.Ping
	} else {
		log.Warn("CLAMAV_ADDRESS not set - uploads are stored without antivirus scanning")
	}

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	entrepriseRepo := postgres.NewEntrepriseRepository(dbPool)
	freelanceRepo := postgres.NewFreelanceRepository(dbPool)
	missionRepo := postgres.NewMissionRepository(dbPool)
	candidatureRepo := postgres.NewCandidatureRepository(dbPool)

	// 8. Setup UseCases
	notifier := notification.NewNotifier(broker, log)
	authUC := usecase.NewAuthUsecase(userRepo, sessions, auth.NewConfirmationTokens(cfg.SecretKey), mailer, cfg.FrontendURL)
	entrepriseUC := usecase.NewEntrepriseUsecase(entrepriseRepo)
	freelanceUC := usecase.NewFreelanceUsecase(freelanceRepo, mediaStorage, scanner)
	missionUC := usecase.NewMissionUsecase(missionRepo, entrepriseRepo)
	candidatureUC := usecase.NewCandidatureUsecase(candidatureRepo, missionRepo, entrepriseRepo, freelanceRepo, notifier)

	// 9. Custom validators on gin's binding engine
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		EntrepriseUC:  entrepriseUC,
		FreelanceUC:   freelanceUC,
		MissionUC:     missionUC,
		CandidatureUC: candidatureUC,
		Broker:        broker,
		LoginTracker:  loginTracker,
		Logger:        log,
		HealthUC:      usecase.NewHealthUsecase(checks),
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Let in-flight notifications reach the broker before it closes
	notifier.Wait()

	log.Info("Server exiting")
}
