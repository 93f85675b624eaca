package domain

import (
	"context"
	"time"
)

// Freelance is the freelancer profile attached 1:1 to a Freelance user
type Freelance struct {
	ID          int64     `json:"id_freelance"`
	UserID      string    `json:"user"`
	Nom         string    `json:"nom"`
	Description *string   `json:"description"`
	Competence  *string   `json:"competence"`
	Experience  *string   `json:"experience"`
	Formation   *string   `json:"formation"`
	Certificat  *string   `json:"certificat"`
	Tarif       *Money    `json:"tarif"`
	PhotoURL    *string   `json:"photo"`
	CvURL       *string   `json:"cv"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FreelancePatch struct {
	Nom         *string `json:"nom" binding:"omitempty,min=2,max=255,valid_name"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Competence  *string `json:"competence" binding:"omitempty,max=2000"`
	Experience  *string `json:"experience" binding:"omitempty,max=5000"`
	Formation   *string `json:"formation" binding:"omitempty,max=5000"`
	Certificat  *string `json:"certificat" binding:"omitempty,max=2000"`
	Tarif       *Money  `json:"tarif" binding:"omitempty,gte=0"`
}

// FreelanceMedia identifies which stored file a profile column points at
type FreelanceMedia string

const (
	MediaPhoto FreelanceMedia = "photo"
	MediaCV    FreelanceMedia = "cv"
)

type FreelanceRepository interface {
	Fetch(ctx context.Context, limit, offset int) ([]Freelance, int64, error)
	GetByUserID(ctx context.Context, userID string) (*Freelance, error)
	GetByID(ctx context.Context, id int64) (*Freelance, error)
	Upsert(ctx context.Context, userID string, patch FreelancePatch) (*Freelance, bool, error)
	SetMediaURL(ctx context.Context, userID string, media FreelanceMedia, url string) (*Freelance, error)
}

// ObjectStorage persists uploaded media and returns its public URL
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// MalwareScanner inspects an upload before it is stored. Scan returns an error
// wrapping antivirus.ErrInfected for flagged content.
type MalwareScanner interface {
	Scan(ctx context.Context, name string, data []byte) error
}

type FreelanceUsecase interface {
	List(ctx context.Context, page, pageSize int) ([]Freelance, int64, error)
	GetMine(ctx context.Context, userID string) (*Freelance, error)
	UpsertMine(ctx context.Context, userID string, role Role, patch FreelancePatch) (*Freelance, bool, error)
	UploadPhoto(ctx context.Context, userID string, role Role, data []byte) (*Freelance, error)
	UploadCV(ctx context.Context, userID string, role Role, data []byte) (*Freelance, error)
}
