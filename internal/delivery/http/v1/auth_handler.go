package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-freelance-backend/config"
	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/logger"
	"go-freelance-backend/pkg/security"
	"go-freelance-backend/pkg/session"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	loginTracker *security.LoginTracker
	config       *config.Config
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, loginTracker *security.LoginTracker, cfg *config.Config, limiter gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC:       authUC,
		loginTracker: loginTracker,
		config:       cfg,
	}

	// Public Routes
	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/register", limiter, handler.Register)
		publicAuth.POST("/login", limiter, handler.Login)
		publicAuth.GET("/confirm/:uid/:token", handler.Confirm)
	}

	// Protected Routes
	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/logout", handler.Logout)
		protectedAuth.GET("/me", handler.Me)
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role" binding:"required,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the body returned alongside the session cookie
type LoginResponse struct {
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	Message string      `json:"message"`
}

// Register godoc
// @Summary      User Registration
// @Description  Creates an inactive account and emails a confirmation link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response{data=domain.RegisterResult}
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      500    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authUC.Register(c.Request.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		c.Error(err)
		return
	}

	security.DefaultLogger().LogAccount(c.Request.Context(), security.EventRegistered, res.UID, c.ClientIP(), response.RequestID(c))
	response.Success(c, http.StatusCreated, "Compte créé. Vérifie ta boîte mail pour confirmer ton adresse.", res)
}

// Confirm godoc
// @Summary      Confirm email address
// @Description  Activates the account referenced by the emailed link. Confirming twice succeeds.
// @Tags         auth
// @Produce      json
// @Param        uid    path  string  true  "User ID"
// @Param        token  path  string  true  "Confirmation token"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /auth/confirm/{uid}/{token} [get]
func (h *AuthHandler) Confirm(c *gin.Context) {
	uid := c.Param("uid")
	if err := h.authUC.Confirm(c.Request.Context(), uid, c.Param("token")); err != nil {
		c.Error(err)
		return
	}

	security.DefaultLogger().LogAccount(c.Request.Context(), security.EventConfirmed, uid, c.ClientIP(), response.RequestID(c))
	response.Success(c, http.StatusOK, "Adresse e-mail confirmée", nil)
}

// Login godoc
// @Summary      User Login
// @Description  Opens a session and sets the sessionid cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=LoginResponse}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	ua := c.Request.UserAgent()
	reqID := response.RequestID(c)
	secLog := security.DefaultLogger()

	blocked, err := h.loginTracker.IsBlocked(ctx, req.Email)
	if err != nil {
		// Fail open: an unreachable tracker must not lock everybody out
		logger.Log.Warn("login tracker unavailable", zap.Error(err))
	}
	if blocked {
		secLog.LogLoginBlocked(ctx, req.Email, ip, ua, reqID)
		c.Error(apperror.TooManyRequests("Trop de tentatives de connexion. Réessayez dans quelques minutes."))
		return
	}

	res, err := h.authUC.Login(ctx, req.Email, req.Password)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			switch appErr.Reason {
			case apperror.ReasonInvalidCredentials:
				secLog.LogLoginFailed(ctx, req.Email, ip, ua, reqID, "invalid_credentials")
				if nowBlocked, _ := h.loginTracker.RecordFailedAttempt(ctx, req.Email, ip, reqID); nowBlocked {
					secLog.LogLoginBlocked(ctx, req.Email, ip, ua, reqID)
				}
			case apperror.ReasonAccountInactive:
				secLog.LogLoginFailed(ctx, req.Email, ip, ua, reqID, "account_inactive")
			}
		}
		c.Error(err)
		return
	}

	_ = h.loginTracker.ClearAttempts(ctx, req.Email)
	secLog.LogAccount(ctx, security.EventLoginSuccess, res.User.ID, ip, reqID)

	h.setSessionCookie(c, res.SessionToken, int(h.config.SessionTTL.Seconds()))
	response.Success(c, http.StatusOK, "Connexion réussie", LoginResponse{
		Email:   res.User.Email,
		Role:    res.User.Role,
		Message: "Connexion réussie",
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Deletes the server-side session and clears the cookie
// @Tags         auth
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUC.Logout(c.Request.Context(), c.GetString(string(domain.KeySession))); err != nil {
		c.Error(err)
		return
	}
	h.setSessionCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Déconnexion réussie", nil)
}

// Me godoc
// @Summary      Get Current User
// @Description  Returns the id, email and role of the authenticated user
// @Tags         auth
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := caller(c)
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Utilisateur courant", gin.H{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", h.config.CookieSecure, true)
}
