// Package realtime carries row-level change notifications between the
// services that write tables and the components that cache them.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
)

// Publisher announces that a table changed.
type Publisher interface {
	Publish(ctx context.Context, table, event string) error
}

// Bus delivers every published change to every subscriber.
type Bus interface {
	Publisher
	Subscribe(ctx context.Context) (<-chan models.Change, error)
}

// Notify publishes a change and only logs a failure. Callers use it after a
// write has already succeeded.
func Notify(ctx context.Context, p Publisher, log *logger.Logger, table, event string) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, table, event); err != nil && log != nil {
		log.Warn("REALTIME", fmt.Sprintf("Failed to publish %s change on %s: %v", event, table, err))
	}
}

const subscriberBuffer = 32

// MemoryBus is an in-process Bus for single-instance runs and tests.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[chan models.Change]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan models.Change]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, table, event string) error {
	change := models.Change{Table: table, Event: event, At: time.Now().UTC()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
			// slow subscriber, it reloads on the next change anyway
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	ch := make(chan models.Change, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// SubscriberCount is used by tests and the health endpoint.
func (b *MemoryBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
