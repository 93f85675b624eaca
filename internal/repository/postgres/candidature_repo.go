package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-freelance-backend/internal/domain"
)

type candidatureRepo struct {
	db *pgxpool.Pool
}

func NewCandidatureRepository(db *pgxpool.Pool) domain.CandidatureRepository {
	return &candidatureRepo{db: db}
}

const candidatureLockSelect = `
	SELECT c.id, c.mission_id, c.freelance_id, c.status, c.date_entretien, c.timezone,
	       c.lettre_motivation, c.created_at, c.updated_at, e.user_id, f.user_id
	FROM candidatures c
	JOIN missions m ON m.id = c.mission_id
	JOIN entreprises e ON e.id = m.entreprise_id
	JOIN freelances f ON f.id = c.freelance_id
	WHERE c.id = $1
	FOR UPDATE OF c`

// The notification read model seen from either side
const candidatureViewSelect = `
	SELECT c.id, m.id, m.titre, e.id, e.nom, f.id, f.nom, c.status,
	       c.date_entretien, c.timezone, c.created_at, c.updated_at
	FROM candidatures c
	JOIN missions m ON m.id = c.mission_id
	JOIN entreprises e ON e.id = m.entreprise_id
	JOIN freelances f ON f.id = c.freelance_id`

func viewDest(v *domain.CandidatureView) []interface{} {
	return []interface{}{
		&v.ID, &v.MissionID, &v.MissionTitre, &v.EntrepriseID, &v.EntrepriseNom,
		&v.FreelanceID, &v.FreelanceNom, &v.Status, &v.DateEntretien, &v.Timezone,
		&v.CreatedAt, &v.UpdatedAt,
	}
}

func collectViews(rows pgx.Rows) ([]domain.CandidatureView, error) {
	defer rows.Close()

	views := make([]domain.CandidatureView, 0)
	for rows.Next() {
		var v domain.CandidatureView
		if err := rows.Scan(viewDest(&v)...); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *candidatureRepo) Create(ctx context.Context, c *domain.Candidature) error {
	query := `INSERT INTO candidatures (mission_id, freelance_id, status, timezone, lettre_motivation, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.MissionID, c.FreelanceID, c.Status, c.Timezone, c.LettreMotivation,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func lockCandidature(ctx context.Context, tx pgx.Tx, id int64) (*domain.Candidature, error) {
	var c domain.Candidature
	err := tx.QueryRow(ctx, candidatureLockSelect, id).Scan(
		&c.ID, &c.MissionID, &c.FreelanceID, &c.Status, &c.DateEntretien, &c.Timezone,
		&c.LettreMotivation, &c.CreatedAt, &c.UpdatedAt, &c.EntrepriseUserID, &c.FreelanceUserID,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *candidatureRepo) UpdateLocked(ctx context.Context, id int64, mutate func(*domain.Candidature) error) (*domain.Candidature, error) {
	var updated *domain.Candidature
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		c, err := lockCandidature(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}

		query := `UPDATE candidatures
		          SET status = $2, date_entretien = $3, timezone = $4, updated_at = NOW()
		          WHERE id = $1
		          RETURNING updated_at`
		if err := tx.QueryRow(ctx, query, c.ID, c.Status, c.DateEntretien, c.Timezone).Scan(&c.UpdatedAt); err != nil {
			return translate(err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *candidatureRepo) DeleteLocked(ctx context.Context, id int64, check func(*domain.Candidature) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		c, err := lockCandidature(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(c); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM candidatures WHERE id = $1`, c.ID)
		return err
	})
}

func (r *candidatureRepo) GetView(ctx context.Context, id int64) (*domain.CandidatureView, error) {
	var v domain.CandidatureView
	if err := r.db.QueryRow(ctx, candidatureViewSelect+` WHERE c.id = $1`, id).Scan(viewDest(&v)...); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// ListForEntreprise returns candidatures across every mission of the entreprise,
// optionally restricted to the given statuses
func (r *candidatureRepo) ListForEntreprise(ctx context.Context, entrepriseID int64, statuses []domain.CandidatureStatus) ([]domain.CandidatureView, error) {
	query := candidatureViewSelect + ` WHERE e.id = $1`
	args := []interface{}{entrepriseID}
	if len(statuses) > 0 {
		raw := make([]string, len(statuses))
		for i, s := range statuses {
			raw[i] = string(s)
		}
		query += ` AND c.status = ANY($2::text[])`
		args = append(args, pq.Array(raw))
	}
	query += ` ORDER BY c.updated_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectViews(rows)
}

func (r *candidatureRepo) ListForFreelance(ctx context.Context, freelanceID int64) ([]domain.CandidatureView, error) {
	rows, err := r.db.Query(ctx, candidatureViewSelect+` WHERE f.id = $1 ORDER BY c.updated_at DESC`, freelanceID)
	if err != nil {
		return nil, err
	}
	return collectViews(rows)
}
