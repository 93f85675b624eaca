package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/internal/repository/postgres"
	"go-freelance-backend/pkg/database"
)

// These tests run against a real database and are skipped unless DATABASE_URL is set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, database.RunMigrations(dsn))
	pool, err := database.NewPostgresConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func strPtr(s string) *string { return &s }

// seedUser inserts an active account; its profiles and missions go with it on cleanup
func seedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@test.local",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, postgres.NewUserRepository(pool).Create(context.Background(), user, nil))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

func seedEntreprise(t *testing.T, pool *pgxpool.Pool, nom string) *domain.Entreprise {
	t.Helper()
	user := seedUser(t, pool, domain.RoleEntreprise)
	e, created, err := postgres.NewEntrepriseRepository(pool).Upsert(context.Background(), user.ID, domain.EntreprisePatch{
		Nom:     strPtr(nom),
		Secteur: strPtr("Informatique"),
	})
	require.NoError(t, err)
	require.True(t, created)
	return e
}

func seedFreelance(t *testing.T, pool *pgxpool.Pool, nom string) *domain.Freelance {
	t.Helper()
	user := seedUser(t, pool, domain.RoleFreelance)
	f, created, err := postgres.NewFreelanceRepository(pool).Upsert(context.Background(), user.ID, domain.FreelancePatch{
		Nom: strPtr(nom),
	})
	require.NoError(t, err)
	require.True(t, created)
	return f
}

func seedMission(t *testing.T, pool *pgxpool.Pool, entrepriseID int64, titre string, budget domain.Money) *domain.Mission {
	t.Helper()
	m := &domain.Mission{
		EntrepriseID: entrepriseID,
		Titre:        titre,
		Description:  "Description",
		Budget:       budget,
	}
	require.NoError(t, postgres.NewMissionRepository(pool).Create(context.Background(), m))
	require.NotZero(t, m.ID)
	return m
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	existing := seedUser(t, pool, domain.RoleFreelance)

	dup := *existing
	dup.ID = uuid.NewString()
	err := postgres.NewUserRepository(pool).Create(ctx, &dup, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMissionFetchByEntrepriseIDScoping(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewMissionRepository(pool)

	acme := seedEntreprise(t, pool, "Acme")
	other := seedEntreprise(t, pool, "Globex")
	mine := seedMission(t, pool, acme.ID, "Refonte API", 150050)
	seedMission(t, pool, other.ID, "Audit sécurité", 90000)

	missions, err := repo.FetchByEntrepriseID(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Equal(t, mine.ID, missions[0].ID)
	assert.Equal(t, acme.ID, missions[0].EntrepriseID)
	assert.Equal(t, acme.UserID, missions[0].OwnerUserID)
	assert.Equal(t, "Acme", missions[0].EntrepriseNom)

	missions, err = repo.FetchByEntrepriseID(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.NotEqual(t, mine.ID, missions[0].ID)
}

func TestMissionBudgetRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewMissionRepository(pool)

	e := seedEntreprise(t, pool, "Acme")
	m := seedMission(t, pool, e.ID, "Budget précis", 1234567)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(1234567), got.Budget)
	assert.Equal(t, "12345.67", got.Budget.String())

	var stored string
	require.NoError(t, pool.QueryRow(ctx, `SELECT budget::text FROM missions WHERE id = $1`, m.ID).Scan(&stored))
	assert.Equal(t, "12345.67", stored)
}

func TestProfileUpsertKeepsOneRow(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	t.Run("Entreprise", func(t *testing.T) {
		repo := postgres.NewEntrepriseRepository(pool)
		user := seedUser(t, pool, domain.RoleEntreprise)

		first, created, err := repo.Upsert(ctx, user.ID, domain.EntreprisePatch{Nom: strPtr("Acme"), Secteur: strPtr("BTP")})
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := repo.Upsert(ctx, user.ID, domain.EntreprisePatch{Nom: strPtr("Acme SAS")})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Acme SAS", second.Nom)
		assert.Equal(t, "BTP", second.Secteur)

		var count int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM entreprises WHERE user_id = $1`, user.ID).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("Freelance concurrent first posts", func(t *testing.T) {
		repo := postgres.NewFreelanceRepository(pool)
		user := seedUser(t, pool, domain.RoleFreelance)
		tarif := domain.Money(5000)

		var wg sync.WaitGroup
		var mu sync.Mutex
		ids := make(map[int64]struct{})
		inserted := 0
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f, created, err := repo.Upsert(ctx, user.ID, domain.FreelancePatch{Nom: strPtr("Jean Dupont"), Tarif: &tarif})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				ids[f.ID] = struct{}{}
				if created {
					inserted++
				}
			}()
		}
		wg.Wait()

		assert.Len(t, ids, 1)
		assert.Equal(t, 1, inserted)

		var count int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM freelances WHERE user_id = $1`, user.ID).Scan(&count))
		assert.Equal(t, 1, count)

		f, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, f.Tarif)
		assert.Equal(t, tarif, *f.Tarif)
	})
}

func TestMissionLockedMutations(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewMissionRepository(pool)
	e := seedEntreprise(t, pool, "Acme")
	errNotOwner := errors.New("not owner")

	t.Run("Check rejects and nothing changes", func(t *testing.T) {
		m := seedMission(t, pool, e.ID, "Avant", 1000)

		_, err := repo.UpdateLocked(ctx, m.ID, func(locked *domain.Mission) error {
			locked.Titre = "Après"
			return errNotOwner
		})
		assert.ErrorIs(t, err, errNotOwner)

		got, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Avant", got.Titre)

		err = repo.DeleteLocked(ctx, m.ID, func(*domain.Mission) error { return errNotOwner })
		assert.ErrorIs(t, err, errNotOwner)
		_, err = repo.GetByID(ctx, m.ID)
		assert.NoError(t, err)
	})

	t.Run("Check sees the owner and mutation persists", func(t *testing.T) {
		m := seedMission(t, pool, e.ID, "Avant", 1000)

		updated, err := repo.UpdateLocked(ctx, m.ID, func(locked *domain.Mission) error {
			if locked.OwnerUserID != e.UserID {
				return errNotOwner
			}
			locked.Apply(domain.MissionPatch{Titre: strPtr("Après")})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Après", updated.Titre)

		got, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "Après", got.Titre)
		assert.Equal(t, domain.Money(1000), got.Budget)

		require.NoError(t, repo.DeleteLocked(ctx, m.ID, func(locked *domain.Mission) error {
			if locked.OwnerUserID != e.UserID {
				return errNotOwner
			}
			return nil
		}))
		_, err = repo.GetByID(ctx, m.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Concurrent updates serialize", func(t *testing.T) {
		m := seedMission(t, pool, e.ID, "Compteur", 0)

		const workers = 10
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.UpdateLocked(ctx, m.ID, func(locked *domain.Mission) error {
					locked.Budget += 100
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Money(workers*100), got.Budget)
	})

	t.Run("Missing mission", func(t *testing.T) {
		_, err := repo.UpdateLocked(ctx, -1, func(*domain.Mission) error { return nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCandidatureStatusVisibleFromBothSides(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewCandidatureRepository(pool)

	e := seedEntreprise(t, pool, "Acme")
	f := seedFreelance(t, pool, "Jean Dupont")
	m := seedMission(t, pool, e.ID, "Refonte API", 500000)

	c := &domain.Candidature{
		MissionID:        m.ID,
		FreelanceID:      f.ID,
		Status:           domain.StatusEnAttente,
		Timezone:         domain.DefaultTimezone,
		LettreMotivation: strPtr("Motivé"),
	}
	require.NoError(t, repo.Create(ctx, c))

	dup := *c
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrConflict)

	date := time.Date(2026, 11, 3, 14, 30, 0, 0, time.UTC)
	status := domain.StatusEnEntretien
	updated, err := repo.UpdateLocked(ctx, c.ID, func(locked *domain.Candidature) error {
		assert.Equal(t, e.UserID, locked.EntrepriseUserID)
		assert.Equal(t, f.UserID, locked.FreelanceUserID)
		return locked.Apply(domain.CandidatureUpdate{
			Status:        &status,
			DateEntretien: &date,
			Timezone:      strPtr("Europe/Paris"),
		})
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnEntretien, updated.Status)

	fromEntreprise, err := repo.ListForEntreprise(ctx, e.ID, nil)
	require.NoError(t, err)
	require.Len(t, fromEntreprise, 1)

	fromFreelance, err := repo.ListForFreelance(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, fromFreelance, 1)

	for _, v := range []domain.CandidatureView{fromEntreprise[0], fromFreelance[0]} {
		assert.Equal(t, c.ID, v.ID)
		assert.Equal(t, domain.StatusEnEntretien, v.Status)
		assert.Equal(t, "Europe/Paris", v.Timezone)
		require.NotNil(t, v.DateEntretien)
		assert.True(t, date.Equal(*v.DateEntretien))
	}
	assert.Equal(t, fromEntreprise[0].UpdatedAt, fromFreelance[0].UpdatedAt)

	filtered, err := repo.ListForEntreprise(ctx, e.ID, []domain.CandidatureStatus{domain.StatusEnAttente})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	filtered, err = repo.ListForEntreprise(ctx, e.ID, []domain.CandidatureStatus{domain.StatusEnEntretien, domain.StatusAcceptee})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	other := seedEntreprise(t, pool, "Globex")
	leaked, err := repo.ListForEntreprise(ctx, other.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, leaked)
}
