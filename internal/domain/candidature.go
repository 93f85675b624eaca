package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type CandidatureStatus string

const (
	StatusEnAttente   CandidatureStatus = "en_attente"
	StatusEnEntretien CandidatureStatus = "en_entretien"
	StatusAcceptee    CandidatureStatus = "acceptee"
	StatusRefusee     CandidatureStatus = "refusee"
)

// DefaultTimezone is stored when a caller schedules an interview without naming a zone
const DefaultTimezone = "UTC"

var candidatureTransitions = map[CandidatureStatus][]CandidatureStatus{
	StatusEnAttente:   {StatusEnEntretien, StatusRefusee},
	StatusEnEntretien: {StatusEnEntretien, StatusAcceptee, StatusRefusee},
	StatusAcceptee:    nil,
	StatusRefusee:     nil,
}

func ParseCandidatureStatus(s string) (CandidatureStatus, error) {
	st := CandidatureStatus(s)
	if _, ok := candidatureTransitions[st]; !ok {
		return "", fmt.Errorf("unknown candidature status %q", s)
	}
	return st, nil
}

// ParseCandidatureStatuses splits a comma separated filter such as "en_attente,en_entretien"
func ParseCandidatureStatuses(raw string) ([]CandidatureStatus, error) {
	var out []CandidatureStatus
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, err := ParseCandidatureStatus(part)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s CandidatureStatus) IsTerminal() bool {
	return len(candidatureTransitions[s]) == 0
}

func (s CandidatureStatus) CanTransitionTo(next CandidatureStatus) bool {
	for _, allowed := range candidatureTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Candidature struct {
	ID               int64             `json:"id_candidature"`
	MissionID        int64             `json:"mission"`
	FreelanceID      int64             `json:"freelance"`
	Status           CandidatureStatus `json:"status"`
	DateEntretien    *time.Time        `json:"date_entretien"`
	Timezone         string            `json:"timezone"`
	LettreMotivation *string           `json:"lettre_motivation"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	// Owners of both sides, loaded with the row for authorization and notification routing
	EntrepriseUserID string `json:"-"`
	FreelanceUserID  string `json:"-"`
}

// CandidatureUpdate is a status change request from the entreprise side
type CandidatureUpdate struct {
	Status        *CandidatureStatus `json:"status" binding:"omitempty,candidature_status"`
	DateEntretien *time.Time         `json:"date_entretien"`
	Timezone      *string            `json:"timezone" binding:"omitempty,timezone"`
}

// Apply validates u against the lifecycle and merges it into c.
// An update that only carries date_entretien/timezone is a reschedule and requires en_entretien.
func (c *Candidature) Apply(u CandidatureUpdate) error {
	next := c.Status
	if u.Status != nil {
		next = *u.Status
	} else if u.DateEntretien != nil || u.Timezone != nil {
		next = StatusEnEntretien
	}
	if !c.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	date := c.DateEntretien
	if u.DateEntretien != nil {
		date = u.DateEntretien
	}
	tz := c.Timezone
	if u.Timezone != nil {
		tz = *u.Timezone
	}
	if tz == "" {
		tz = DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	if next == StatusEnEntretien && date == nil {
		return ErrInterviewDateRequired
	}

	c.Status = next
	c.DateEntretien = date
	c.Timezone = tz
	return nil
}

// CandidatureView is the notification read model shared by both sides
type CandidatureView struct {
	ID            int64             `json:"id_candidature"`
	MissionID     int64             `json:"id_mission"`
	MissionTitre  string            `json:"mission_titre"`
	EntrepriseID  int64             `json:"id_entreprise"`
	EntrepriseNom string            `json:"entreprise_nom"`
	FreelanceID   int64             `json:"id_freelance"`
	FreelanceNom  string            `json:"freelance_nom"`
	Status        CandidatureStatus `json:"status"`
	DateEntretien *time.Time        `json:"date_entretien"`
	Timezone      string            `json:"timezone"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type CandidatureRepository interface {
	// Create returns ErrConflict when the freelance already applied to the mission
	Create(ctx context.Context, candidature *Candidature) error
	UpdateLocked(ctx context.Context, id int64, mutate func(*Candidature) error) (*Candidature, error)
	DeleteLocked(ctx context.Context, id int64, check func(*Candidature) error) error
	GetView(ctx context.Context, id int64) (*CandidatureView, error)
	ListForEntreprise(ctx context.Context, entrepriseID int64, statuses []CandidatureStatus) ([]CandidatureView, error)
	ListForFreelance(ctx context.Context, freelanceID int64) ([]CandidatureView, error)
}

type CandidatureUsecase interface {
	Apply(ctx context.Context, userID string, role Role, missionID int64, lettre *string) (*Candidature, error)
	UpdateStatus(ctx context.Context, userID string, role Role, id int64, update CandidatureUpdate) (*CandidatureView, error)
	Withdraw(ctx context.Context, userID string, role Role, id int64) error
	ListForEntreprise(ctx context.Context, userID string, role Role, statuses []CandidatureStatus) ([]CandidatureView, error)
	ListForFreelance(ctx context.Context, userID string, role Role) ([]CandidatureView, error)
	// Export renders the entreprise view as an XLSX workbook and returns its bytes and filename
	Export(ctx context.Context, userID string, role Role, statuses []CandidatureStatus) ([]byte, string, error)
}
