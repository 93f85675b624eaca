package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/metrics"
)

// PublishTimeout bounds a single publish so a stuck broker cannot pile up goroutines
const PublishTimeout = 3 * time.Second

// Notifier publishes events in the background. Failures are logged and counted, never returned.
type Notifier struct {
	broker  Broker
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewNotifier(broker Broker, log *zap.Logger) *Notifier {
	return &Notifier{
		broker:  broker,
		log:     log.Named("notifier"),
		timeout: PublishTimeout,
		now:     time.Now,
	}
}

func (n *Notifier) Notify(ctx context.Context, userID string, event domain.NotificationEvent) {
	if userID == "" {
		return
	}
	if event.SentAt.IsZero() {
		event.SentAt = n.now().UTC()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		// The request may finish before the publish does
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		n.publish(pubCtx, userID, event)
	}()
}

func (n *Notifier) publish(ctx context.Context, userID string, event domain.NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.NotificationsPublished.WithLabelValues(event.Type, metrics.ResultError).Inc()
		n.log.Error("failed to encode notification", zap.String("event", event.Type), zap.Error(err))
		return
	}

	if err := n.broker.Publish(ctx, UserChannel(userID), payload); err != nil {
		metrics.NotificationsPublished.WithLabelValues(event.Type, metrics.ResultError).Inc()
		n.log.Warn("notification not delivered",
			zap.String("event", event.Type),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	metrics.NotificationsPublished.WithLabelValues(event.Type, metrics.ResultOK).Inc()
	n.log.Debug("notification published",
		zap.String("event", event.Type),
		zap.String("user_id", userID),
	)
}

// Wait blocks until in-flight publishes finish; used on shutdown
func (n *Notifier) Wait() {
	n.wg.Wait()
}
