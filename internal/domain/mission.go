package domain

import (
	"context"
	"time"
)

type Mission struct {
	ID               int64     `json:"id_mission"`
	EntrepriseID     int64     `json:"entreprise"`
	EntrepriseNom    string    `json:"entreprise_nom,omitempty"`
	Titre            string    `json:"titre"`
	Description      string    `json:"description"`
	CompetenceRequis string    `json:"competence_requis"`
	Budget           Money     `json:"budget"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	// OwnerUserID is the user behind EntrepriseID, loaded with the row for ownership checks
	OwnerUserID string `json:"-"`
}

type MissionPatch struct {
	Titre            *string `json:"titre" binding:"omitempty,min=3,max=255,no_emoji"`
	Description      *string `json:"description" binding:"omitempty,max=10000"`
	CompetenceRequis *string `json:"competence_requis" binding:"omitempty,max=2000"`
	Budget           *Money  `json:"budget" binding:"omitempty,gte=0"`
}

// Apply merges the non-nil patch fields into m
func (m *Mission) Apply(p MissionPatch) {
	if p.Titre != nil {
		m.Titre = *p.Titre
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.CompetenceRequis != nil {
		m.CompetenceRequis = *p.CompetenceRequis
	}
	if p.Budget != nil {
		m.Budget = *p.Budget
	}
}

type MissionRepository interface {
	Create(ctx context.Context, mission *Mission) error
	GetByID(ctx context.Context, id int64) (*Mission, error)
	Fetch(ctx context.Context, limit, offset int) ([]Mission, int64, error)
	FetchByEntrepriseID(ctx context.Context, entrepriseID int64) ([]Mission, error)
	// UpdateLocked loads the row FOR UPDATE, calls mutate and persists the result in the same
	// transaction. A mutate error aborts the transaction and is returned unchanged.
	UpdateLocked(ctx context.Context, id int64, mutate func(*Mission) error) (*Mission, error)
	// DeleteLocked loads the row FOR UPDATE and deletes it when check returns nil
	DeleteLocked(ctx context.Context, id int64, check func(*Mission) error) error
}

type MissionUsecase interface {
	List(ctx context.Context, page, pageSize int) ([]Mission, int64, error)
	ListMine(ctx context.Context, userID string, role Role) ([]Mission, error)
	Get(ctx context.Context, id int64) (*Mission, error)
	Create(ctx context.Context, userID string, role Role, mission *Mission) error
	Update(ctx context.Context, userID string, role Role, id int64, patch MissionPatch) (*Mission, error)
	Delete(ctx context.Context, userID string, role Role, id int64) error
}
