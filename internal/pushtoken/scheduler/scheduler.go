package scheduler

import (
	"context"
	"time"

	"repairhub-backend/internal/pushtoken/repository"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"

	"github.com/robfig/cron/v3"
)

var log = logger.For("token-sweeper")

// TokenSweeper periodically deactivates push tokens the client stopped refreshing
type TokenSweeper struct {
	cron       *cron.Cron
	tokenRepo  repository.PushTokenRepository
	staleAfter time.Duration
	schedule   string
	now        func() time.Time
}

// NewTokenSweeper creates a new sweeper
func NewTokenSweeper(tokenRepo repository.PushTokenRepository, schedule string, staleAfter time.Duration) *TokenSweeper {
	return &TokenSweeper{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		tokenRepo:  tokenRepo,
		staleAfter: staleAfter,
		schedule:   schedule,
		now:        time.Now,
	}
}

// Start registers the sweep job and begins the cron loop
func (s *TokenSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	log.Infof("started (schedule %q, stale after %s)", s.schedule, s.staleAfter)
	return nil
}

// Stop waits for a running sweep to finish
func (s *TokenSweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info("stopped")
}

// Sweep runs one cleanup pass and returns how many tokens were deactivated
func (s *TokenSweeper) Sweep(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.staleAfter)
	n, err := s.tokenRepo.DeactivateStaleTokens(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("stale token sweep failed")
		return 0
	}
	if n > 0 {
		metrics.TokenDeactivated("stale", int(n))
		log.Infof("deactivated %d stale tokens (not refreshed since %s)", n, cutoff.Format(time.RFC3339))
	}
	return n
}
