package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expirySwapStore interface {
	RejectExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpirySweeper periodically rejects pending requests whose response
// deadline has passed. Expiry is already visible to readers without it (the
// is_expired flag is derived at read time); the sweeper only tidies rows so
// stale requests stop occupying recipients' inboxes. It is off by default.
type ExpirySweeper struct {
	repo     expirySwapStore
	logger   *zap.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewExpirySweeper constructs an ExpirySweeper instance.
func NewExpirySweeper(repo expirySwapStore, logger *zap.Logger, interval time.Duration) *ExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpirySweeper{repo: repo, logger: logger, interval: interval}
}

// Start launches the sweep loop.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer close(s.done)
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

// Sweep runs a single pass. Exported so operators can trigger it manually.
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	n, err := s.repo.RejectExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Warn("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired pending swap requests rejected", zap.Int64("count", n))
	}
}
