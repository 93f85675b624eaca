package domain

import (
	"context"
	"fmt"
	"time"
)

// Role is the closed set of account kinds. It is fixed at registration.
type Role string

const (
	RoleFreelance  Role = "Freelance"
	RoleEntreprise Role = "Entreprise"
)

// ParseRole converts a wire value into a Role, rejecting anything outside the enum
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFreelance, RoleEntreprise:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterResult is returned once the account row exists and the confirmation mail left
type RegisterResult struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginResult carries the authenticated user and the freshly issued session token
type LoginResult struct {
	User         *User
	SessionToken string
}

type UserRepository interface {
	// Create inserts the user and runs afterInsert in the same transaction;
	// an afterInsert error rolls the insert back.
	Create(ctx context.Context, user *User, afterInsert func(ctx context.Context) error) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Activate(ctx context.Context, id string) error
}

// SessionStore keeps server-side sessions keyed by an opaque token
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// TokenIssuer signs and verifies email confirmation tokens
type TokenIssuer interface {
	Issue(uid string) (string, error)
	Verify(token string) (string, error)
}

// Mailer delivers a single message
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type AuthUsecase interface {
	Register(ctx context.Context, email, password string, role Role) (*RegisterResult, error)
	Confirm(ctx context.Context, uid, token string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, sessionToken string) error
	ResolveSession(ctx context.Context, sessionToken string) (*User, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

// ContextKey names the gin context entries set by the session middleware
type ContextKey string

const (
	KeyUserID    ContextKey = "user_id"
	KeyUserEmail ContextKey = "user_email"
	KeyUserRole  ContextKey = "user_role"
	KeySession   ContextKey = "session_token"
)
