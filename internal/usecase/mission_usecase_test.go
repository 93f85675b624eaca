package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/internal/usecase"
	"go-freelance-backend/pkg/apperror"
)

func TestMissionCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Attaches mission to caller entreprise", func(t *testing.T) {
		missions := new(MockMissionRepo)
		entreprises := new(MockEntrepriseRepo)
		uc := usecase.NewMissionUsecase(missions, entreprises)
		entreprises.On("GetByUserID", ctx, "u1").Return(&domain.Entreprise{ID: 7, Nom: "Acme"}, nil)
		missions.On("Create", ctx, mock.AnythingOfType("*domain.Mission")).Return(nil)

		m := &domain.Mission{EntrepriseID: 99, Titre: "API Go", Budget: 1500}
		require.NoError(t, uc.Create(ctx, "u1", domain.RoleEntreprise, m))
		assert.Equal(t, int64(7), m.EntrepriseID)
		assert.Equal(t, "Acme", m.EntrepriseNom)
		assert.Equal(t, "u1", m.OwnerUserID)
	})

	t.Run("Entreprise profile missing", func(t *testing.T) {
		missions := new(MockMissionRepo)
		entreprises := new(MockEntrepriseRepo)
		uc := usecase.NewMissionUsecase(missions, entreprises)
		entreprises.On("GetByUserID", ctx, "u1").Return(nil, domain.ErrNotFound)

		err := uc.Create(ctx, "u1", domain.RoleEntreprise, &domain.Mission{Titre: "API Go"})
		requireAppError(t, err, http.StatusNotFound, "")
	})

	t.Run("Freelance cannot publish", func(t *testing.T) {
		uc := usecase.NewMissionUsecase(new(MockMissionRepo), new(MockEntrepriseRepo))
		err := uc.Create(ctx, "u2", domain.RoleFreelance, &domain.Mission{Titre: "API Go"})
		requireAppError(t, err, http.StatusForbidden, apperror.ReasonWrongRole)
	})

	t.Run("Negative budget", func(t *testing.T) {
		uc := usecase.NewMissionUsecase(new(MockMissionRepo), new(MockEntrepriseRepo))
		err := uc.Create(ctx, "u1", domain.RoleEntreprise, &domain.Mission{Titre: "API Go", Budget: -1})
		requireAppError(t, err, http.StatusBadRequest, apperror.ReasonValidation)
	})
}

func TestMissionUpdate(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Mission{ID: 5, EntrepriseID: 7, Titre: "API Go", Budget: 1500, OwnerUserID: "owner"}

	t.Run("Owner patch is applied", func(t *testing.T) {
		missions := new(MockMissionRepo)
		uc := usecase.NewMissionUsecase(missions, new(MockEntrepriseRepo))
		missions.On("UpdateLocked", ctx, int64(5)).Return(stored, nil)

		budget := domain.Money(2000)
		m, err := uc.Update(ctx, "owner", domain.RoleEntreprise, 5, domain.MissionPatch{Budget: &budget})
		require.NoError(t, err)
		assert.Equal(t, domain.Money(2000), m.Budget)
		assert.Equal(t, "API Go", m.Titre)
	})

	t.Run("Other entreprise is not owner", func(t *testing.T) {
		missions := new(MockMissionRepo)
		uc := usecase.NewMissionUsecase(missions, new(MockEntrepriseRepo))
		missions.On("UpdateLocked", ctx, int64(5)).Return(stored, nil)

		_, err := uc.Update(ctx, "intruder", domain.RoleEntreprise, 5, domain.MissionPatch{Titre: strPtr("Pwned")})
		requireAppError(t, err, http.StatusForbidden, apperror.ReasonNotOwner)
	})

	t.Run("Freelance is rejected before any lookup", func(t *testing.T) {
		missions := new(MockMissionRepo)
		uc := usecase.NewMissionUsecase(missions, new(MockEntrepriseRepo))

		_, err := uc.Update(ctx, "owner", domain.RoleFreelance, 5, domain.MissionPatch{Titre: strPtr("x")})
		requireAppError(t, err, http.StatusForbidden, apperror.ReasonWrongRole)
		missions.AssertNotCalled(t, "UpdateLocked", mock.Anything, mock.Anything)
	})

	t.Run("Unknown mission", func(t *testing.T) {
		missions := new(MockMissionRepo)
		uc := usecase.NewMissionUsecase(missions, new(MockEntrepriseRepo))
		missions.On("UpdateLocked", ctx, int64(404)).Return(nil, domain.ErrNotFound)

		_, err := uc.Update(ctx, "owner", domain.RoleEntreprise, 404, domain.MissionPatch{})
		requireAppError(t, err, http.StatusNotFound, "")
	})
}

func TestMissionDelete(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Mission{ID: 5, OwnerUserID: "owner"}

	missions := new(MockMissionRepo)
	uc := usecase.NewMissionUsecase(missions, new(MockEntrepriseRepo))
	missions.On("DeleteLocked", ctx, int64(5)).Return(stored, nil)

	require.NoError(t, uc.Delete(ctx, "owner", domain.RoleEntreprise, 5))

	err := uc.Delete(ctx, "intruder", domain.RoleEntreprise, 5)
	requireAppError(t, err, http.StatusForbidden, apperror.ReasonNotOwner)

	err = uc.Delete(ctx, "owner", domain.RoleFreelance, 5)
	requireAppError(t, err, http.StatusForbidden, apperror.ReasonWrongRole)
}

func TestMissionListMine(t *testing.T) {
	ctx := context.Background()

	t.Run("Scoped to caller entreprise", func(t *testing.T) {
		missions := new(MockMissionRepo)
		entreprises := new(MockEntrepriseRepo)
		uc := usecase.NewMissionUsecase(missions, entreprises)
		entreprises.On("GetByUserID", ctx, "u1").Return(&domain.Entreprise{ID: 7}, nil)
		missions.On("FetchByEntrepriseID", ctx, int64(7)).Return([]domain.Mission{{ID: 1, EntrepriseID: 7}}, nil)

		list, err := uc.ListMine(ctx, "u1", domain.RoleEntreprise)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(7), list[0].EntrepriseID)
	})

	t.Run("No profile yet", func(t *testing.T) {
		entreprises := new(MockEntrepriseRepo)
		uc := usecase.NewMissionUsecase(new(MockMissionRepo), entreprises)
		entreprises.On("GetByUserID", ctx, "u1").Return(nil, domain.ErrNotFound)

		list, err := uc.ListMine(ctx, "u1", domain.RoleEntreprise)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NotNil(t, list)
	})
}
