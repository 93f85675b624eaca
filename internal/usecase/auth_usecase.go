package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/auth"
	"go-freelance-backend/pkg/email"
	"go-freelance-backend/pkg/metrics"
)

const (
	MsgInvalidCredentials = "Email ou mot de passe incorrect"
	MsgAccountInactive    = "Votre compte n’a pas encore été confirmé. Veuillez vérifier votre e-mail."
	MsgInvalidLink        = "Lien de confirmation invalide ou expiré"
	MsgSessionInvalid     = "Session invalide ou expirée"
)

// MinPasswordLength is enforced at registration
const MinPasswordLength = 6

type authUsecase struct {
	userRepo    domain.UserRepository
	sessions    domain.SessionStore
	tokens      domain.TokenIssuer
	mailer      domain.Mailer
	frontendURL string
}

func NewAuthUsecase(
	userRepo domain.UserRepository,
	sessions domain.SessionStore,
	tokens domain.TokenIssuer,
	mailer domain.Mailer,
	frontendURL string,
) domain.AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: frontendURL,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Register creates an inactive account. The row is only committed once the confirmation
// email has been handed to the mailer.
func (u *authUsecase) Register(ctx context.Context, emailAddr, password string, role domain.Role) (*domain.RegisterResult, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, apperror.Validation([]string{"Rôle : doit être Freelance ou Entreprise"})
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.Validation([]string{"Mot de passe : 6 caractères minimum"})
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(emailAddr),
		PasswordHash: hash,
		Role:         role,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	subject, body, err := email.ConfirmationEmail(u.frontendURL, user.ID, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	err = u.userRepo.Create(ctx, user, func(ctx context.Context) error {
		if err := u.mailer.Send(ctx, user.Email, subject, body); err != nil {
			metrics.EmailsSent.WithLabelValues("confirmation", metrics.ResultError).Inc()
			return apperror.New(http.StatusInternalServerError, "Impossible d'envoyer l'e-mail de confirmation", err)
		}
		metrics.EmailsSent.WithLabelValues("confirmation", metrics.ResultOK).Inc()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Un compte existe déjà avec cet e-mail").WithReason(apperror.ReasonEmailTaken)
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}

	return &domain.RegisterResult{
		UID:   user.ID,
		Token: token,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// Confirm activates the account; confirming an active account again is a no-op
func (u *authUsecase) Confirm(ctx context.Context, uid, token string) error {
	invalid := apperror.BadRequest(MsgInvalidLink).WithReason(apperror.ReasonInvalidToken)

	subject, err := u.tokens.Verify(token)
	if err != nil || subject != uid {
		return invalid
	}

	user, err := u.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalid
		}
		return apperror.Internal(err)
	}
	if user.IsActive {
		return nil
	}

	if err := u.userRepo.Activate(ctx, uid); err != nil {
		return notFoundOr(err, MsgInvalidLink)
	}
	return nil
}

// Login answers unknown email and wrong password identically
func (u *authUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.LoginResult, error) {
	invalid := apperror.BadRequest(MsgInvalidCredentials).WithReason(apperror.ReasonInvalidCredentials)

	user, err := u.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, invalid
		}
		return nil, apperror.Internal(err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, apperror.Forbidden(MsgAccountInactive).WithReason(apperror.ReasonAccountInactive)
	}

	token, err := u.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.LoginResult{User: user, SessionToken: token}, nil
}

func (u *authUsecase) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := u.sessions.Delete(ctx, sessionToken); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ResolveSession maps a session token to an active user
func (u *authUsecase) ResolveSession(ctx context.Context, sessionToken string) (*domain.User, error) {
	unauthorized := apperror.Unauthorized(MsgSessionInvalid)
	if sessionToken == "" {
		return nil, unauthorized
	}

	userID, err := u.sessions.Get(ctx, sessionToken)
	if err != nil {
		return nil, unauthorized
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, unauthorized
		}
		return nil, apperror.Internal(err)
	}
	if !user.IsActive {
		return nil, unauthorized
	}
	return user, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Utilisateur introuvable")
	}
	return user, nil
}
