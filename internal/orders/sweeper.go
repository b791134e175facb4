package orders

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper reconciles orders whose gateway session can no longer complete:
// rows still Pending/Pending after the TTL had their checkout abandoned, or
// were reserved right before a crash and never reached the gateway. Either
// way no callback is coming, so the payment is marked Failed.
type Sweeper struct {
	store    Store
	ttl      time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(store Store, ttl, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{store: store, ttl: ttl, interval: interval, log: log}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.store.ExpirePending(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		s.log.Error("expire pending orders", zap.Error(err))
		return
	}
	if expired > 0 {
		s.log.Info("expired stale pending orders", zap.Int64("count", expired))
	}
}
