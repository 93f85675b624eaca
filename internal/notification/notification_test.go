package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-freelance-backend/internal/domain"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestMemoryBroker(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	t.Run("Delivers to channel subscribers only", func(t *testing.T) {
		mine, cancelMine, err := b.Subscribe(ctx, UserChannel("u1"))
		require.NoError(t, err)
		defer cancelMine()
		other, cancelOther, err := b.Subscribe(ctx, UserChannel("u2"))
		require.NoError(t, err)
		defer cancelOther()

		require.NoError(t, b.Publish(ctx, UserChannel("u1"), []byte("hello")))

		assert.Equal(t, []byte("hello"), receive(t, mine))
		select {
		case <-other:
			t.Fatal("u2 must not receive u1 events")
		default:
		}
	})

	t.Run("Cancel closes the stream", func(t *testing.T) {
		ch, cancel, err := b.Subscribe(ctx, "c")
		require.NoError(t, err)
		cancel()
		cancel()
		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("Publish without subscribers", func(t *testing.T) {
		assert.NoError(t, b.Publish(ctx, "nobody", []byte("x")))
	})

	t.Run("Closed broker", func(t *testing.T) {
		closed := NewMemoryBroker()
		closed.Close()
		assert.ErrorIs(t, closed.Publish(ctx, "c", nil), ErrBrokerClosed)
	})
}

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, []byte) error { return errors.New("redis down") }
func (failingBroker) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return nil, nil, errors.New("redis down")
}

func TestNotifier(t *testing.T) {
	t.Run("Publishes event on user channel", func(t *testing.T) {
		b := NewMemoryBroker()
		ch, cancel, err := b.Subscribe(context.Background(), UserChannel("freelance-user"))
		require.NoError(t, err)
		defer cancel()

		n := NewNotifier(b, zap.NewNop())
		reqCtx, reqCancel := context.WithCancel(context.Background())
		n.Notify(reqCtx, "freelance-user", domain.NotificationEvent{
			Type:        domain.EventCandidatureStatusChanged,
			Candidature: &domain.CandidatureView{ID: 7, Status: domain.StatusEnEntretien, Timezone: "Europe/Paris"},
		})
		// A finished request must not cancel the publish
		reqCancel()

		var got domain.NotificationEvent
		require.NoError(t, json.Unmarshal(receive(t, ch), &got))
		assert.Equal(t, domain.EventCandidatureStatusChanged, got.Type)
		assert.Equal(t, int64(7), got.Candidature.ID)
		assert.Equal(t, "Europe/Paris", got.Candidature.Timezone)
		assert.False(t, got.SentAt.IsZero())
		n.Wait()
	})

	t.Run("Broker failure is swallowed", func(t *testing.T) {
		n := NewNotifier(failingBroker{}, zap.NewNop())
		assert.NotPanics(t, func() {
			n.Notify(context.Background(), "u1", domain.NotificationEvent{Type: domain.EventCandidatureCreated})
			n.Wait()
		})
	})
}
