package usecase

import (
	"errors"
	"strings"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

// User-facing messages shared by several usecases
const (
	MsgProfileMissing      = "Profil inexistant"
	MsgNoEntreprise        = "Aucune entreprise associée à cet utilisateur."
	MsgNoFreelance         = "Aucun profil freelance associé à cet utilisateur."
	MsgMissionNotFound     = "Mission introuvable"
	MsgCandidatureNotFound = "Candidature introuvable"
	MsgEntrepriseOnly      = "Réservé aux comptes Entreprise"
	MsgFreelanceOnly       = "Réservé aux comptes Freelance"
	MsgNotMissionOwner     = "Vous n'êtes pas propriétaire de cette mission"
	MsgNotCandidatureOwner = "Vous n'êtes pas autorisé à modifier cette candidature"
)

func requireRole(role, want domain.Role) error {
	if role == want {
		return nil
	}
	if want == domain.RoleEntreprise {
		return apperror.Forbidden(MsgEntrepriseOnly).WithReason(apperror.ReasonWrongRole)
	}
	return apperror.Forbidden(MsgFreelanceOnly).WithReason(apperror.ReasonWrongRole)
}

// notFoundOr converts domain.ErrNotFound into a 404 with msg and anything else into a 500
func notFoundOr(err error, msg string) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound(msg)
	default:
		return apperror.Internal(err)
	}
}

// pageBounds returns limit and offset for 1-based pagination
func pageBounds(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
