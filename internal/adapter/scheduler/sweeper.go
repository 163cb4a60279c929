package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"crypto-price-tracker/pkg/logger"
)

const sweepTimeout = 30 * time.Second

// Expirer drops cache entries that outlived their TTL.
type Expirer interface {
	ClearExpired(ctx context.Context) error
}

// CacheSweeper clears expired history entries on a cron schedule.
type CacheSweeper struct {
	cron     *cron.Cron
	schedule string
	target   Expirer
	log      *logger.Logger
}

func NewCacheSweeper(schedule string, target Expirer, log *logger.Logger) *CacheSweeper {
	return &CacheSweeper{
		cron:     cron.New(),
		schedule: schedule,
		target:   target,
		log:      log,
	}
}

// Start registers the sweep job and starts the scheduler. Standard five-field
// expressions and descriptors such as "@every 10m" are accepted.
func (s *CacheSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Cache sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *CacheSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Cache sweeper stopped")
}

func (s *CacheSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.target.ClearExpired(ctx); err != nil {
		s.log.Error("Scheduled cache sweep failed", "error", err)
		return
	}
	s.log.Debug("Expired cache entries cleared")
}
