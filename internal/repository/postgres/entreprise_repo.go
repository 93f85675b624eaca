package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-freelance-backend/internal/domain"
)

type entrepriseRepo struct {
	db *pgxpool.Pool
}

func NewEntrepriseRepository(db *pgxpool.Pool) domain.EntrepriseRepository {
	return &entrepriseRepo{db: db}
}

const entrepriseColumns = `id, user_id, nom, secteur, description, site_web, created_at, updated_at`

func scanEntreprise(row pgx.Row) (*domain.Entreprise, error) {
	var e domain.Entreprise
	err := row.Scan(
		&e.ID, &e.UserID, &e.Nom, &e.Secteur, &e.Description, &e.SiteWeb,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *entrepriseRepo) GetByUserID(ctx context.Context, userID string) (*domain.Entreprise, error) {
	query := `SELECT ` + entrepriseColumns + ` FROM entreprises WHERE user_id = $1`
	return scanEntreprise(r.db.QueryRow(ctx, query, userID))
}

func (r *entrepriseRepo) GetByID(ctx context.Context, id int64) (*domain.Entreprise, error) {
	query := `SELECT ` + entrepriseColumns + ` FROM entreprises WHERE id = $1`
	return scanEntreprise(r.db.QueryRow(ctx, query, id))
}

// Upsert relies on UNIQUE(user_id): concurrent first posts converge on one row.
// NULL parameters keep the stored value on update.
func (r *entrepriseRepo) Upsert(ctx context.Context, userID string, patch domain.EntreprisePatch) (*domain.Entreprise, bool, error) {
	query := `
		INSERT INTO entreprises (user_id, nom, secteur, description, site_web, created_at, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), $4, $5, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			nom = COALESCE($2, entreprises.nom),
			secteur = COALESCE($3, entreprises.secteur),
			description = COALESCE($4, entreprises.description),
			site_web = COALESCE($5, entreprises.site_web),
			updated_at = NOW()
		RETURNING ` + entrepriseColumns + `, (xmax = 0) AS inserted`

	var e domain.Entreprise
	var inserted bool
	err := r.db.QueryRow(ctx, query,
		userID, patch.Nom, patch.Secteur, patch.Description, patch.SiteWeb,
	).Scan(
		&e.ID, &e.UserID, &e.Nom, &e.Secteur, &e.Description, &e.SiteWeb,
		&e.CreatedAt, &e.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, false, translate(err)
	}
	return &e, inserted, nil
}
