package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-freelance-backend/internal/domain"
)

type freelanceRepo struct {
	db *pgxpool.Pool
}

func NewFreelanceRepository(db *pgxpool.Pool) domain.FreelanceRepository {
	return &freelanceRepo{db: db}
}

const freelanceColumns = `id, user_id, nom, description, competence, experience, formation,
	certificat, tarif, photo_url, cv_url, created_at, updated_at`

func freelanceDest(f *domain.Freelance) []interface{} {
	return []interface{}{
		&f.ID, &f.UserID, &f.Nom, &f.Description, &f.Competence, &f.Experience, &f.Formation,
		&f.Certificat, &f.Tarif, &f.PhotoURL, &f.CvURL, &f.CreatedAt, &f.UpdatedAt,
	}
}

func scanFreelance(row pgx.Row) (*domain.Freelance, error) {
	var f domain.Freelance
	if err := row.Scan(freelanceDest(&f)...); err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *freelanceRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Freelance, int64, error) {
	query := `SELECT ` + freelanceColumns + ` FROM freelances ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	freelances := make([]domain.Freelance, 0)
	for rows.Next() {
		var f domain.Freelance
		if err := rows.Scan(freelanceDest(&f)...); err != nil {
			return nil, 0, err
		}
		freelances = append(freelances, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM freelances`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return freelances, total, nil
}

func (r *freelanceRepo) GetByUserID(ctx context.Context, userID string) (*domain.Freelance, error) {
	query := `SELECT ` + freelanceColumns + ` FROM freelances WHERE user_id = $1`
	return scanFreelance(r.db.QueryRow(ctx, query, userID))
}

func (r *freelanceRepo) GetByID(ctx context.Context, id int64) (*domain.Freelance, error) {
	query := `SELECT ` + freelanceColumns + ` FROM freelances WHERE id = $1`
	return scanFreelance(r.db.QueryRow(ctx, query, id))
}

func (r *freelanceRepo) Upsert(ctx context.Context, userID string, patch domain.FreelancePatch) (*domain.Freelance, bool, error) {
	query := `
		INSERT INTO freelances (user_id, nom, description, competence, experience, formation, certificat, tarif, created_at, updated_at)
		VALUES ($1, COALESCE($2, ''), $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			nom = COALESCE($2, freelances.nom),
			description = COALESCE($3, freelances.description),
			competence = COALESCE($4, freelances.competence),
			experience = COALESCE($5, freelances.experience),
			formation = COALESCE($6, freelances.formation),
			certificat = COALESCE($7, freelances.certificat),
			tarif = COALESCE($8, freelances.tarif),
			updated_at = NOW()
		RETURNING ` + freelanceColumns + `, (xmax = 0) AS inserted`

	var f domain.Freelance
	var inserted bool
	dest := append(freelanceDest(&f), &inserted)
	err := r.db.QueryRow(ctx, query,
		userID, patch.Nom, patch.Description, patch.Competence, patch.Experience,
		patch.Formation, patch.Certificat, patch.Tarif,
	).Scan(dest...)
	if err != nil {
		return nil, false, translate(err)
	}
	return &f, inserted, nil
}

func (r *freelanceRepo) SetMediaURL(ctx context.Context, userID string, media domain.FreelanceMedia, url string) (*domain.Freelance, error) {
	var column string
	switch media {
	case domain.MediaPhoto:
		column = "photo_url"
	case domain.MediaCV:
		column = "cv_url"
	default:
		return nil, fmt.Errorf("unknown media %q", media)
	}

	query := `UPDATE freelances SET ` + column + ` = $2, updated_at = NOW()
	          WHERE user_id = $1 RETURNING ` + freelanceColumns
	return scanFreelance(r.db.QueryRow(ctx, query, userID, url))
}
