package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler runs a job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	log   *slog.Logger
	job   Job
	spec  string

	mu  sync.Mutex
	ctx context.Context
}

// New parses spec (standard 5-field cron or a descriptor such as
// "@every 1h") and prepares job for scheduling.
func New(spec string, job Job, log *slog.Logger) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelWarn))
	c := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	s := &Scheduler{cron: c, log: log, job: job, spec: spec, ctx: context.Background()}

	id, err := c.AddFunc(spec, s.fire)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	s.job(ctx)
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish. With runFirst the job also runs once right away.
func (s *Scheduler) Run(ctx context.Context, runFirst bool) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started", slog.String("schedule", s.spec))

	if runFirst {
		// The wrapped job carries the skip-if-running chain.
		s.cron.Entry(s.entry).WrappedJob.Run()
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
