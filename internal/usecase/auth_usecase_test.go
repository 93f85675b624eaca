package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/internal/usecase"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/auth"
	"go-freelance-backend/pkg/session"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

type authFixture struct {
	users    *MockUserRepo
	mailer   *MockMailer
	sessions *session.MemoryStore
	tokens   *auth.ConfirmationTokens
	uc       domain.AuthUsecase
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:    new(MockUserRepo),
		mailer:   new(MockMailer),
		sessions: session.NewMemoryStore(time.Hour),
		tokens:   auth.NewConfirmationTokens("test-secret"),
	}
	f.uc = usecase.NewAuthUsecase(f.users, f.sessions, f.tokens, f.mailer, "http://front.test")
	return f
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns uid and token and sends exactly one email", func(t *testing.T) {
		f := newAuthFixture()
		var created *domain.User
		f.users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		})
		var body string
		f.mailer.On("Send", ctx, "jean@example.com", mock.MatchedBy(func(s string) bool {
			return s == "Vérifie ton adresse e-mail"
		}), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			body = args.String(3)
		})

		res, err := f.uc.Register(ctx, " Jean@Example.com ", "secret123", domain.RoleFreelance)
		require.NoError(t, err)

		assert.NotEmpty(t, res.UID)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "jean@example.com", res.Email)
		assert.Equal(t, domain.RoleFreelance, res.Role)
		assert.Contains(t, body, res.UID)
		assert.Contains(t, body, res.Token)
		f.mailer.AssertNumberOfCalls(t, "Send", 1)

		require.NotNil(t, created)
		assert.False(t, created.IsActive)
		assert.NotEqual(t, "secret123", created.PasswordHash)

		uid, err := f.tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.UID, uid)
	})

	t.Run("Email failure aborts registration", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.Anything).Return(nil)
		f.mailer.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		_, err := f.uc.Register(ctx, "jean@example.com", "secret123", domain.RoleEntreprise)
		requireAppError(t, err, http.StatusInternalServerError, "")
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.Anything).Return(fmt.Errorf("insert user: %w", domain.ErrConflict))

		_, err := f.uc.Register(ctx, "jean@example.com", "secret123", domain.RoleEntreprise)
		requireAppError(t, err, http.StatusConflict, apperror.ReasonEmailTaken)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown role", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.uc.Register(ctx, "jean@example.com", "secret123", domain.Role("Admin"))
		requireAppError(t, err, http.StatusBadRequest, apperror.ReasonValidation)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Short password", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.uc.Register(ctx, "jean@example.com", "abc", domain.RoleFreelance)
		requireAppError(t, err, http.StatusBadRequest, apperror.ReasonValidation)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("Activates account", func(t *testing.T) {
		f := newAuthFixture()
		token, _ := f.tokens.Issue("u1")
		f.users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1"}, nil)
		f.users.On("Activate", ctx, "u1").Return(nil)

		require.NoError(t, f.uc.Confirm(ctx, "u1", token))
		f.users.AssertCalled(t, "Activate", ctx, "u1")
	})

	t.Run("Already active is idempotent", func(t *testing.T) {
		f := newAuthFixture()
		token, _ := f.tokens.Issue("u1")
		f.users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", IsActive: true}, nil)

		require.NoError(t, f.uc.Confirm(ctx, "u1", token))
		f.users.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	})

	t.Run("Token for another uid", func(t *testing.T) {
		f := newAuthFixture()
		token, _ := f.tokens.Issue("u2")

		err := f.uc.Confirm(ctx, "u1", token)
		requireAppError(t, err, http.StatusBadRequest, apperror.ReasonInvalidToken)
	})

	t.Run("Unknown user", func(t *testing.T) {
		f := newAuthFixture()
		token, _ := f.tokens.Issue("ghost")
		f.users.On("GetByID", ctx, "ghost").Return(nil, domain.ErrNotFound)

		err := f.uc.Confirm(ctx, "ghost", token)
		requireAppError(t, err, http.StatusBadRequest, apperror.ReasonInvalidToken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	active := &domain.User{ID: "u1", Email: "jean@example.com", PasswordHash: hash, Role: domain.RoleEntreprise, IsActive: true}
	inactive := &domain.User{ID: "u2", Email: "paul@example.com", PasswordHash: hash, Role: domain.RoleFreelance}

	t.Run("Wrong password and unknown email are indistinguishable", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "jean@example.com").Return(active, nil)
		f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrNotFound)

		_, errWrong := f.uc.Login(ctx, "jean@example.com", "wrong-pass")
		_, errUnknown := f.uc.Login(ctx, "nobody@example.com", "secret123")

		a := requireAppError(t, errWrong, http.StatusBadRequest, apperror.ReasonInvalidCredentials)
		b := requireAppError(t, errUnknown, http.StatusBadRequest, apperror.ReasonInvalidCredentials)
		assert.Equal(t, "Email ou mot de passe incorrect", a.Message)
		assert.Equal(t, a.Message, b.Message)
	})

	t.Run("Inactive account with correct password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "paul@example.com").Return(inactive, nil)

		_, err := f.uc.Login(ctx, "paul@example.com", "secret123")
		appErr := requireAppError(t, err, http.StatusForbidden, apperror.ReasonAccountInactive)
		assert.Contains(t, appErr.Message, "pas encore été confirmé")
	})

	t.Run("Success opens a session", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "jean@example.com").Return(active, nil)
		f.users.On("GetByID", ctx, "u1").Return(active, nil)

		res, err := f.uc.Login(ctx, "JEAN@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEntreprise, res.User.Role)

		user, err := f.uc.ResolveSession(ctx, res.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)

		require.NoError(t, f.uc.Logout(ctx, res.SessionToken))
		_, err = f.uc.ResolveSession(ctx, res.SessionToken)
		requireAppError(t, err, http.StatusUnauthorized, "")
	})
}

func TestResolveSessionRejectsDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	token, err := f.sessions.Create(ctx, "u3")
	require.NoError(t, err)
	f.users.On("GetByID", ctx, "u3").Return(&domain.User{ID: "u3"}, nil)

	_, err = f.uc.ResolveSession(ctx, token)
	requireAppError(t, err, http.StatusUnauthorized, "")
}
