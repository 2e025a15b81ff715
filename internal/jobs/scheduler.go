package jobs

import (
	"context"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var cleanupLogger zerolog.Logger

func init() {
	cleanupLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("component", "jobs").
		Logger().
		Level(zerolog.InfoLevel)
}

// Scheduler runs jobs on cron schedules. A panicking job is logged and the
// schedule keeps going; a run still in progress skips the next tick.
type Scheduler struct {
	cron    *cron.Cron
	chain   cron.Chain
	startup []cron.Job
}

func NewScheduler() *Scheduler {
	cronLogger := cron.PrintfLogger(&cleanupLogger)
	return &Scheduler{
		cron: cron.New(),
		chain: cron.NewChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	}
}

// Add registers job under a standard five-field spec or a descriptor such
// as "@every 1h".
func (s *Scheduler) Add(schedule string, job cron.Job) error {
	_, err := s.add(schedule, job)
	return err
}

// AddAndRunAtStart registers job like Add and also runs it once when the
// scheduler starts. The startup run shares the scheduled run's guards, so
// it never overlaps a tick.
func (s *Scheduler) AddAndRunAtStart(schedule string, job cron.Job) error {
	wrapped, err := s.add(schedule, job)
	if err != nil {
		return err
	}
	s.startup = append(s.startup, wrapped)
	return nil
}

func (s *Scheduler) add(schedule string, job cron.Job) (cron.Job, error) {
	wrapped := s.chain.Then(job)
	if _, err := s.cron.AddJob(schedule, wrapped); err != nil {
		return nil, err
	}
	cleanupLogger.Info().Str("schedule", schedule).Msg("job scheduled")
	return wrapped, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, job := range s.startup {
		go job.Run()
	}
}

// Stop stops scheduling and waits for running jobs, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		cleanupLogger.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		cleanupLogger.Warn().Msg("scheduler stop timed out")
	}
}
