package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-freelance-backend/internal/domain"
)

type missionRepo struct {
	db *pgxpool.Pool
}

func NewMissionRepository(db *pgxpool.Pool) domain.MissionRepository {
	return &missionRepo{db: db}
}

const missionSelect = `
	SELECT m.id, m.entreprise_id, e.nom, e.user_id, m.titre, m.description,
	       m.competence_requis, m.budget, m.created_at, m.updated_at
	FROM missions m
	JOIN entreprises e ON e.id = m.entreprise_id`

func missionDest(m *domain.Mission) []interface{} {
	return []interface{}{
		&m.ID, &m.EntrepriseID, &m.EntrepriseNom, &m.OwnerUserID, &m.Titre, &m.Description,
		&m.CompetenceRequis, &m.Budget, &m.CreatedAt, &m.UpdatedAt,
	}
}

func collectMissions(rows pgx.Rows) ([]domain.Mission, error) {
	defer rows.Close()

	missions := make([]domain.Mission, 0)
	for rows.Next() {
		var m domain.Mission
		if err := rows.Scan(missionDest(&m)...); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func (r *missionRepo) Create(ctx context.Context, mission *domain.Mission) error {
	query := `INSERT INTO missions (entreprise_id, titre, description, competence_requis, budget, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		mission.EntrepriseID, mission.Titre, mission.Description, mission.CompetenceRequis, mission.Budget,
	).Scan(&mission.ID, &mission.CreatedAt, &mission.UpdatedAt)
	return translate(err)
}

func (r *missionRepo) GetByID(ctx context.Context, id int64) (*domain.Mission, error) {
	var m domain.Mission
	if err := r.db.QueryRow(ctx, missionSelect+` WHERE m.id = $1`, id).Scan(missionDest(&m)...); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *missionRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Mission, int64, error) {
	rows, err := r.db.Query(ctx, missionSelect+` ORDER BY m.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	missions, err := collectMissions(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM missions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return missions, total, nil
}

func (r *missionRepo) FetchByEntrepriseID(ctx context.Context, entrepriseID int64) ([]domain.Mission, error) {
	rows, err := r.db.Query(ctx, missionSelect+` WHERE m.entreprise_id = $1 ORDER BY m.created_at DESC`, entrepriseID)
	if err != nil {
		return nil, err
	}
	return collectMissions(rows)
}

// lockMission reads the mission row FOR UPDATE so the owner cannot change under the caller
func lockMission(ctx context.Context, tx pgx.Tx, id int64) (*domain.Mission, error) {
	var m domain.Mission
	err := tx.QueryRow(ctx, missionSelect+` WHERE m.id = $1 FOR UPDATE OF m`, id).Scan(missionDest(&m)...)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *missionRepo) UpdateLocked(ctx context.Context, id int64, mutate func(*domain.Mission) error) (*domain.Mission, error) {
	var updated *domain.Mission
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		m, err := lockMission(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mutate(m); err != nil {
			return err
		}

		query := `UPDATE missions
		          SET titre = $2, description = $3, competence_requis = $4, budget = $5, updated_at = NOW()
		          WHERE id = $1
		          RETURNING updated_at`
		if err := tx.QueryRow(ctx, query,
			m.ID, m.Titre, m.Description, m.CompetenceRequis, m.Budget,
		).Scan(&m.UpdatedAt); err != nil {
			return translate(err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *missionRepo) DeleteLocked(ctx context.Context, id int64, check func(*domain.Mission) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		m, err := lockMission(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(m); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM missions WHERE id = $1`, m.ID)
		return err
	})
}
