package auditfeed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
)

func TestBroker_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroker()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	rec := &models.AuditLog{ID: uuid.New(), Action: models.AuditActionCreate}
	b.Notify(context.Background(), rec)

	for i, ch := range []chan models.AuditLog{ch1, ch2} {
		select {
		case got := <-ch:
			if got.ID != rec.ID {
				t.Errorf("subscriber %d got %s, want %s", i, got.ID, rec.ID)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestBroker_FullSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < cap(ch)+10; i++ {
		b.Notify(context.Background(), &models.AuditLog{ID: uuid.New()})
	}

	if len(ch) != cap(ch) {
		t.Errorf("expected channel to be full (%d), got %d", cap(ch), len(ch))
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
	if b.Subscribers() != 0 {
		t.Errorf("expected no subscribers, got %d", b.Subscribers())
	}

	// Second unsubscribe is a no-op
	b.Unsubscribe(ch)
}

func TestMulti_ForwardsInOrder(t *testing.T) {
	first, second := NewBroker(), NewBroker()
	ch1, ch2 := first.Subscribe(), second.Subscribe()

	Multi{first, second}.Notify(context.Background(), &models.AuditLog{ID: uuid.New()})

	if len(ch1) != 1 || len(ch2) != 1 {
		t.Errorf("expected both brokers to receive the record, got %d and %d", len(ch1), len(ch2))
	}
}
