package domain

import (
	"context"
	"time"
)

// Entreprise is the company profile attached 1:1 to an Entreprise user
type Entreprise struct {
	ID          int64     `json:"id_entreprise"`
	UserID      string    `json:"user"`
	Nom         string    `json:"nom"`
	Secteur     string    `json:"secteur"`
	Description *string   `json:"description"`
	SiteWeb     *string   `json:"site_web"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntreprisePatch holds the fields of a create-or-update request. Nil fields are left untouched.
type EntreprisePatch struct {
	Nom         *string `json:"nom" binding:"omitempty,min=2,max=255,valid_name"`
	Secteur     *string `json:"secteur" binding:"omitempty,max=255,no_emoji"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	SiteWeb     *string `json:"site_web" binding:"omitempty,url,max=500"`
}

type EntrepriseRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Entreprise, error)
	GetByID(ctx context.Context, id int64) (*Entreprise, error)
	// Upsert creates the profile or merges patch into the existing one in a single statement.
	// The returned bool reports whether a row was inserted.
	Upsert(ctx context.Context, userID string, patch EntreprisePatch) (*Entreprise, bool, error)
}

type EntrepriseUsecase interface {
	GetMine(ctx context.Context, userID string) (*Entreprise, error)
	UpsertMine(ctx context.Context, userID string, role Role, patch EntreprisePatch) (*Entreprise, bool, error)
	GetMyID(ctx context.Context, userID string) (int64, error)
}
