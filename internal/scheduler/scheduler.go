package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/model"
)

type FineSweeper interface {
	RunFineSweep(ctx context.Context, now time.Time) (model.SweepResult, error)
}

// Scheduler fires the fine sweep once a day at the configured local hour.
// A sweep finishes before the next tick is armed, so sweeps never overlap.
type Scheduler struct {
	sweeper FineSweeper
	hour    int
	log     *zap.Logger
}

func New(sweeper FineSweeper, hour int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		hour:    hour,
		log:     log.Named("scheduler"),
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Until(nextRun(time.Now(), s.hour)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			res, err := s.sweeper.RunFineSweep(ctx, now.UTC())
			if err != nil {
				s.log.Error("fine sweep", zap.Error(err))
			} else {
				s.log.Info("fine sweep done",
					zap.Int("scanned", res.Scanned),
					zap.Int("created", res.Created),
					zap.Int("updated", res.Updated),
					zap.Int("failed", res.Failed),
				)
			}
			timer.Reset(time.Until(nextRun(time.Now(), s.hour)))
		}
	}
}

// nextRun is the next wall-clock occurrence of hour after now.
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
