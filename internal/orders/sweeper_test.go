package orders

import (
	"context"
	"testing"
	"time"

	"github.com/nayeemx/gymstore/internal/models"
)

func TestSweepExpiresStalePendingOrders(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	now := time.Now().UTC()

	stale := seedOrder(t, store, "course", "u1", now.Add(-48*time.Hour))
	fresh := seedOrder(t, store, "course", "u1", now)

	resolved := seedOrder(t, store, "course", "u2", now.Add(-48*time.Hour))
	confirmed := models.OrderConfirmed
	if _, err := store.ResolvePayment(context.Background(), resolved.PaymentID, models.PaymentPaid, &confirmed); err != nil {
		t.Fatalf("ResolvePayment: %v", err)
	}

	sweeper := NewSweeper(store, 24*time.Hour, time.Hour, nil)
	sweeper.Sweep(context.Background())

	got, _ := store.FindByID(context.Background(), stale.ID)
	if got.PaymentStatus != models.PaymentFailed {
		t.Fatalf("stale order should be expired, got %s", got.PaymentStatus)
	}

	got, _ = store.FindByID(context.Background(), fresh.ID)
	if got.PaymentStatus != models.PaymentPending {
		t.Fatalf("fresh order must stay pending, got %s", got.PaymentStatus)
	}

	got, _ = store.FindByID(context.Background(), resolved.ID)
	if got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("paid order must not be touched, got %s", got.PaymentStatus)
	}
}
