package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-freelance-backend/internal/domain"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User, afterInsert func(ctx context.Context) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := tx.Exec(ctx, query,
			user.ID, user.Email, user.PasswordHash, user.Role, user.IsActive,
			user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return translate(err)
		}

		if afterInsert != nil {
			return afterInsert(ctx)
		}
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) Activate(ctx context.Context, id string) error {
	query := `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
