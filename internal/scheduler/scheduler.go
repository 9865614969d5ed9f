// Package scheduler re-runs the workbook import on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cybershield/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const Trigger = "schedule"

type Runner interface {
	Run(ctx context.Context, trigger string) (*service.Result, error)
}

// Scheduler wraps the gocron scheduler that owns the import job.
type Scheduler struct {
	sched gocron.Scheduler
}

// Start registers the import job and starts the scheduler. Runs never overlap; a tick that
// fires while the previous run is still going is skipped.
func Start(ctx context.Context, every time.Duration, runner Runner, log logrus.FieldLogger) (*Scheduler, error) {
	if every <= 0 {
		return nil, fmt.Errorf("import schedule must be positive, got %s", every)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			result, err := runner.Run(ctx, Trigger)
			switch {
			case errors.Is(err, service.ErrImportRunning):
				log.Info("[Scheduler] import skipped, another run is in progress")
			case err != nil:
				log.WithError(err).Error("[Scheduler] import failed")
			default:
				log.WithField("run", result.Run.ID).Info("[Scheduler] import finished")
			}
		}),
		gocron.WithName("workbook-import"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	log.WithField("every", every).Info("[Scheduler] import scheduled")
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
