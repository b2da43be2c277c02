// tasks/scheduler.go
package tasks

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

// Job is one scheduled unit of work.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler runs the periodic jobs: the daily digest at 06:00 (the digest
// itself skips weekends), the weekly export Sunday 02:00, and export cleanup
// Sunday 03:00.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(digest, export, cleanup Job) (*Scheduler, error) {
	c := cron.New()

	jobs := []struct {
		spec string
		name string
		job  Job
	}{
		{"0 6 * * *", "digest", digest},
		{"0 2 * * 0", "export", export},
		{"0 3 * * 0", "cleanup", cleanup},
	}
	for _, j := range jobs {
		j := j
		if _, err := c.AddFunc(j.spec, func() {
			logger.Info("Running scheduled job", zap.String("job", j.name))
			if err := j.job.Run(context.Background()); err != nil {
				logger.Error("Scheduled job failed",
					zap.String("job", j.name),
					zap.Error(err))
			}
		}); err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
