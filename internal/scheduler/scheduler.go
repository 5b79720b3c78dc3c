// Package scheduler runs the periodic housekeeping jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler is a cron-like job scheduler
type Scheduler struct {
	*cron.Cron
	log *zap.Logger
}

// cronLogger adapts zap to the cron logger interface
type cronLogger struct {
	logger *zap.SugaredLogger
}

// Info logs routine messages about cron's operation
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

// Error logs an error condition
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// New returns a scheduler that logs through log
func New(log *zap.Logger) *Scheduler {
	log = log.Named("cron")
	return &Scheduler{
		Cron: cron.New(cron.WithLogger(cronLogger{log.Sugar()})),
		log:  log,
	}
}

// AddJob schedules fn under spec, logging and counting each run
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) (cron.EntryID, error) {
	return s.Cron.AddFunc(spec, func() {
		start := time.Now()
		err := fn(context.Background())
		recordRun(name, err)
		if err != nil {
			s.log.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Info("Scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	})
}

// Shutdown stops the scheduler and waits up to 30s for running jobs
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}
