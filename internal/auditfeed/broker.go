// Package auditfeed fans newly appended audit records out to live
// subscribers and external channels.
package auditfeed

import (
	"context"
	"sync"

	"github.com/nebari-dev/userhub/internal/models"
)

// Broker delivers audit records to in-process subscribers, such as
// streaming HTTP clients.
type Broker struct {
	subscribers map[chan models.AuditLog]bool
	mu          sync.RWMutex
}

// NewBroker creates a new broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan models.AuditLog]bool),
	}
}

// Subscribe creates a new subscription
func (b *Broker) Subscribe() chan models.AuditLog {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.AuditLog, 100) // Buffered channel to prevent blocking
	b.subscribers[ch] = true
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *Broker) Unsubscribe(ch chan models.AuditLog) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[ch] {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// Notify sends rec to every subscriber. Slow subscribers miss records
// rather than blocking the recorder.
func (b *Broker) Notify(ctx context.Context, rec *models.AuditLog) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- *rec:
		default:
			// Channel full, record is dropped
		}
	}
}

// Close closes all subscriptions
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[chan models.AuditLog]bool)
}

// Subscribers returns the number of active subscriptions
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
