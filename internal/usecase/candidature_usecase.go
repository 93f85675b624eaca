package usecase

import (
	"context"
	"errors"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

type candidatureUsecase struct {
	candidatureRepo domain.CandidatureRepository
	missionRepo     domain.MissionRepository
	entrepriseRepo  domain.EntrepriseRepository
	freelanceRepo   domain.FreelanceRepository
	notifier        domain.Notifier
}

func NewCandidatureUsecase(
	candidatureRepo domain.CandidatureRepository,
	missionRepo domain.MissionRepository,
	entrepriseRepo domain.EntrepriseRepository,
	freelanceRepo domain.FreelanceRepository,
	notifier domain.Notifier,
) domain.CandidatureUsecase {
	return &candidatureUsecase{
		candidatureRepo: candidatureRepo,
		missionRepo:     missionRepo,
		entrepriseRepo:  entrepriseRepo,
		freelanceRepo:   freelanceRepo,
		notifier:        notifier,
	}
}

// lifecycleError maps state machine failures onto API errors
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.Conflict("Transition de statut non autorisée").WithReason(apperror.ReasonInvalidTransition)
	case errors.Is(err, domain.ErrInterviewDateRequired):
		return apperror.Validation([]string{"Date d'entretien : obligatoire pour planifier un entretien"})
	case errors.Is(err, domain.ErrInvalidTimezone):
		return apperror.Validation([]string{"Fuseau horaire : fuseau horaire inconnu"})
	default:
		return err
	}
}

// notify pushes the current read model of candidature id to userID
func (u *candidatureUsecase) notify(ctx context.Context, userID, eventType string, view *domain.CandidatureView) {
	if u.notifier == nil || view == nil {
		return
	}
	u.notifier.Notify(ctx, userID, domain.NotificationEvent{Type: eventType, Candidature: view})
}

func (u *candidatureUsecase) Apply(ctx context.Context, userID string, role domain.Role, missionID int64, lettre *string) (*domain.Candidature, error) {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return nil, err
	}

	freelance, err := u.freelanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, MsgNoFreelance)
	}
	mission, err := u.missionRepo.GetByID(ctx, missionID)
	if err != nil {
		return nil, notFoundOr(err, MsgMissionNotFound)
	}

	c := &domain.Candidature{
		MissionID:        mission.ID,
		FreelanceID:      freelance.ID,
		Status:           domain.StatusEnAttente,
		Timezone:         domain.DefaultTimezone,
		LettreMotivation: lettre,
		EntrepriseUserID: mission.OwnerUserID,
		FreelanceUserID:  userID,
	}
	if err := u.candidatureRepo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Vous avez déjà postulé à cette mission")
		}
		return nil, notFoundOr(err, MsgMissionNotFound)
	}

	if view, err := u.candidatureRepo.GetView(ctx, c.ID); err == nil {
		u.notify(ctx, mission.OwnerUserID, domain.EventCandidatureCreated, view)
	}
	return c, nil
}

// UpdateStatus runs the ownership check and the transition under one row lock, then
// notifies the freelance once the transaction has committed
func (u *candidatureUsecase) UpdateStatus(ctx context.Context, userID string, role domain.Role, id int64, update domain.CandidatureUpdate) (*domain.CandidatureView, error) {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return nil, err
	}
	if update.Status == nil && update.DateEntretien == nil && update.Timezone == nil {
		return nil, apperror.Validation([]string{"Statut : ce champ est obligatoire"})
	}

	updated, err := u.candidatureRepo.UpdateLocked(ctx, id, func(c *domain.Candidature) error {
		if c.EntrepriseUserID != userID {
			return apperror.Forbidden(MsgNotCandidatureOwner).WithReason(apperror.ReasonNotOwner)
		}
		return lifecycleError(c.Apply(update))
	})
	if err != nil {
		return nil, notFoundOr(err, MsgCandidatureNotFound)
	}

	view, err := u.candidatureRepo.GetView(ctx, updated.ID)
	if err != nil {
		return nil, notFoundOr(err, MsgCandidatureNotFound)
	}
	u.notify(ctx, updated.FreelanceUserID, domain.EventCandidatureStatusChanged, view)
	return view, nil
}

// Withdraw lets the applying freelance delete a candidature that is still pending
func (u *candidatureUsecase) Withdraw(ctx context.Context, userID string, role domain.Role, id int64) error {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return err
	}

	// Captured before deletion so the entreprise can be told which row disappeared
	view, _ := u.candidatureRepo.GetView(ctx, id)

	var entrepriseUserID string
	err := u.candidatureRepo.DeleteLocked(ctx, id, func(c *domain.Candidature) error {
		if c.FreelanceUserID != userID {
			return apperror.Forbidden(MsgNotCandidatureOwner).WithReason(apperror.ReasonNotOwner)
		}
		if c.Status != domain.StatusEnAttente {
			return apperror.Conflict("Seule une candidature en attente peut être retirée").WithReason(apperror.ReasonInvalidTransition)
		}
		entrepriseUserID = c.EntrepriseUserID
		return nil
	})
	if err != nil {
		return notFoundOr(err, MsgCandidatureNotFound)
	}

	u.notify(ctx, entrepriseUserID, domain.EventCandidatureWithdrawn, view)
	return nil
}

func (u *candidatureUsecase) ListForEntreprise(ctx context.Context, userID string, role domain.Role, statuses []domain.CandidatureStatus) ([]domain.CandidatureView, error) {
	if err := requireRole(role, domain.RoleEntreprise); err != nil {
		return nil, err
	}

	entreprise, err := u.entrepriseRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.CandidatureView{}, nil
		}
		return nil, apperror.Internal(err)
	}

	views, err := u.candidatureRepo.ListForEntreprise(ctx, entreprise.ID, statuses)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

func (u *candidatureUsecase) ListForFreelance(ctx context.Context, userID string, role domain.Role) ([]domain.CandidatureView, error) {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return nil, err
	}

	freelance, err := u.freelanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.CandidatureView{}, nil
		}
		return nil, apperror.Internal(err)
	}

	views, err := u.candidatureRepo.ListForFreelance(ctx, freelance.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}
