package usecase

import (
	"context"
	"errors"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

type missionUsecase struct {
	missionRepo    domain.MissionRepository
	entrepriseRepo domain.EntrepriseRepository
}

func NewMissionUsecase(missionRepo domain.MissionRepository, entrepriseRepo domain.EntrepriseRepository) domain.MissionUsecase {
	return &missionUsecase{
		missionRepo:    missionRepo,
		entrepriseRepo: entrepriseRepo,
	}
}

func notMissionOwner() error {
	return apperror.Forbidden(MsgNotMissionOwner).WithReason(apperror.ReasonNotOwner)
}

func (u *missionUsecase) List(ctx context.Context, page, pageSize int) ([]domain.Mission, int64, error) {
	limit, offset := pageBounds(page, pageSize)
	missions, total, err := u.missionRepo.Fetch(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return missions, total, nil
}

// ListMine returns the missions of the caller's entreprise, or none when it has no profile yet
func (u *missionUsecase) ListMine(ctx context.Context, userID string, role domain.Role) ([]domain.Mission, error) {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return nil, err
	}

	entreprise, err := u.entrepriseRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Mission{}, nil
		}
		return nil, apperror.Internal(err)
	}

	missions, err := u.missionRepo.FetchByEntrepriseID(ctx, entreprise.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return missions, nil
}

func (u *missionUsecase) Get(ctx context.Context, id int64) (*domain.Mission, error) {
	m, err := u.missionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, MsgMissionNotFound)
	}
	return m, nil
}

// Create attaches the mission to the caller's entreprise; client supplied owner fields are ignored
func (u *missionUsecase) Create(ctx context.Context, userID string, role domain.Role, mission *domain.Mission) error {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return err
	}
	if blank(&mission.Titre) {
		return apperror.Validation([]string{"Titre : ce champ est obligatoire"})
	}
	if mission.Budget < 0 {
		return apperror.Validation([]string{"Budget : doit être supérieur ou égal à 0"})
	}

	entreprise, err := u.entrepriseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return notFoundOr(err, MsgNoEntreprise)
	}

	mission.ID = 0
	mission.EntrepriseID = entreprise.ID
	mission.EntrepriseNom = entreprise.Nom
	mission.OwnerUserID = userID

	if err := u.missionRepo.Create(ctx, mission); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Update checks ownership and applies patch under the same row lock
func (u *missionUsecase) Update(ctx context.Context, userID string, role domain.Role, id int64, patch domain.MissionPatch) (*domain.Mission, error) {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return nil, err
	}

	m, err := u.missionRepo.UpdateLocked(ctx, id, func(m *domain.Mission) error {
		if m.OwnerUserID != userID {
			return notMissionOwner()
		}
		m.Apply(patch)
		if blank(&m.Titre) {
			return apperror.Validation([]string{"Titre : ce champ est obligatoire"})
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, MsgMissionNotFound)
	}
	return m, nil
}

func (u *missionUsecase) Delete(ctx context.Context, userID string, role domain.Role, id int64) error {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return err
	}

	err := u.missionRepo.DeleteLocked(ctx, id, func(m *domain.Mission) error {
		if m.OwnerUserID != userID {
			return notMissionOwner()
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, MsgMissionNotFound)
	}
	return nil
}
