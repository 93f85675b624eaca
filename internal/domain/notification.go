package domain

import (
	"context"
	"time"
)

const (
	EventCandidatureCreated       = "candidature.created"
	EventCandidatureStatusChanged = "candidature.status_changed"
	EventCandidatureWithdrawn     = "candidature.withdrawn"
)

// NotificationEvent is the payload pushed on a user's channel
type NotificationEvent struct {
	Type        string           `json:"type"`
	Candidature *CandidatureView `json:"candidature"`
	SentAt      time.Time        `json:"sent_at"`
}

// Notifier delivers events to a user's live channel. Delivery is best effort:
// implementations never report failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID string, event NotificationEvent)
}
