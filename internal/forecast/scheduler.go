package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/capstone-itrack/backend-go/pkg/logger"
)

// Scheduler retrains the model cache from the database once per UTC day.
// It owns no goroutine itself: main starts Run on a context tied to
// process shutdown, and cancelling that context interrupts the inter-cycle
// sleep immediately. A cycle already training keeps running to completion.
type Scheduler struct {
	Delay  time.Duration
	Period time.Duration

	retrain func(ctx context.Context) error
	lastRun func() time.Time
	now     func() time.Time
}

// NewScheduler wires the loop to the trainer via retrain and to the cache
// via lastRun, so it needs no direct handle on either.
func NewScheduler(delay, period time.Duration, lastRun func() time.Time, retrain func(ctx context.Context) error) *Scheduler {
	if period <= 0 {
		period = 24 * time.Hour
	}
	return &Scheduler{
		Delay:   delay,
		Period:  period,
		retrain: retrain,
		lastRun: lastRun,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled. Cycle failures are logged and the
// loop continues; only cancellation stops it.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Component("scheduler")

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	log.Info().Dur("delay", s.Delay).Dur("period", s.Period).Msg("training scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("training scheduler stopped")
			return
		case <-timer.C:
		}

		s.cycle(ctx)
		timer.Reset(s.Period)
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	log := logger.Component("scheduler")

	last := s.lastRun()
	today := s.now().UTC()
	if !last.IsZero() && sameUTCDate(last, today) {
		log.Debug().Time("last_trained", last).Msg("models already trained today, skipping cycle")
		return
	}

	if err := s.retrain(ctx); err != nil {
		if errors.Is(err, ErrTrainingInProgress) {
			log.Info().Msg("another training run is in flight, skipping cycle")
			return
		}
		log.Error().Err(err).Msg("scheduled training cycle failed")
	}
}

func sameUTCDate(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month() && au.Day() == bu.Day()
}
