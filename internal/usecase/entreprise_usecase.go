package usecase

import (
	"context"
	"errors"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

type entrepriseUsecase struct {
	entrepriseRepo domain.EntrepriseRepository
}

func NewEntrepriseUsecase(entrepriseRepo domain.EntrepriseRepository) domain.EntrepriseUsecase {
	return &entrepriseUsecase{entrepriseRepo: entrepriseRepo}
}

func (u *entrepriseUsecase) GetMine(ctx context.Context, userID string) (*domain.Entreprise, error) {
	e, err := u.entrepriseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, MsgProfileMissing)
	}
	return e, nil
}

// UpsertMine creates the caller's profile or applies a partial update to it.
// The returned bool is true when the profile was created.
func (u *entrepriseUsecase) UpsertMine(ctx context.Context, userID string, role domain.Role, patch domain.EntreprisePatch) (*domain.Entreprise, bool, error) {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return nil, false, err
	}

	if patch.Nom != nil && blank(patch.Nom) {
		return nil, false, apperror.Validation([]string{"Nom : ce champ est obligatoire"})
	}
	if patch.Nom == nil {
		// A creation needs a name; an update may omit it
		if _, err := u.entrepriseRepo.GetByUserID(ctx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, false, apperror.Validation([]string{"Nom : ce champ est obligatoire"})
			}
			return nil, false, apperror.Internal(err)
		}
	}

	e, created, err := u.entrepriseRepo.Upsert(ctx, userID, patch)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	return e, created, nil
}

func (u *entrepriseUsecase) GetMyID(ctx context.Context, userID string) (int64, error) {
	e, err := u.entrepriseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, notFoundOr(err, MsgNoEntreprise)
	}
	return e.ID, nil
}
