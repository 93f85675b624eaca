package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Broker fans payloads out to the subscribers of a channel. Delivery is at most once.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a stream of payloads and a function releasing the subscription
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// UserChannel is the channel a user's live clients listen on
func UserChannel(userID string) string {
	return "notifications:user:" + userID
}

var ErrBrokerClosed = errors.New("notification broker closed")

// RedisBroker uses Redis PUBLISH/SUBSCRIBE so every API instance sees every event
type RedisBroker struct {
	client *goredis.Client
}

func NewRedisBroker(client *goredis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	ps := b.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no event published afterwards is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(func() { _ = ps.Close() }) }, nil
}

// MemoryBroker is a process-local broker used without Redis and in tests
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan []byte]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for ch := range b.subs[channel] {
		// Slow subscribers lose events rather than block the publisher
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	ch := make(chan []byte, 16)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[channel][ch]; ok {
				delete(b.subs[channel], ch)
				close(ch)
			}
			if len(b.subs[channel]) == 0 {
				delete(b.subs, channel)
			}
		})
	}
	return ch, cancel, nil
}

// Close ends every subscription
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for channel, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, channel)
	}
}
