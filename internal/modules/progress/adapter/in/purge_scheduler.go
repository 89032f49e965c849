package in

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	hclog "github.com/hashicorp/go-hclog"

	progressin "huixue/internal/modules/progress/port/in"
	"huixue/internal/platform/logging"
)

// PurgeScheduler removes expired progress records on a fixed interval, once
// at start and then every period.
type PurgeScheduler struct {
	scheduler *gocron.Scheduler
	usecase   progressin.Usecase
	period    time.Duration
	logger    hclog.Logger
}

func NewPurgeScheduler(usecase progressin.Usecase, period time.Duration, logger hclog.Logger) *PurgeScheduler {
	if period <= 0 {
		period = time.Hour
	}
	return &PurgeScheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		usecase:   usecase,
		period:    period,
		logger:    logging.OrNull(logger).Named("purge"),
	}
}

func (s *PurgeScheduler) Start() error {
	if _, err := s.scheduler.Every(s.period).Do(s.run); err != nil {
		return fmt.Errorf("schedule progress purge: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *PurgeScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *PurgeScheduler) run() {
	out, err := s.usecase.PurgeExpired(context.Background())
	if err != nil {
		s.logger.Warn("progress purge failed", "error", err)
		return
	}
	if len(out.Removed) > 0 {
		s.logger.Info("expired progress removed", "scanned", out.Scanned, "removed", out.Removed)
	}
}
