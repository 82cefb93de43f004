package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Job is a periodic maintenance task. Run reports how many records it
// touched.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	jobs    map[string]Job
}

// New creates a scheduler whose runs are bounded by timeout. A run that is
// still going when its next tick fires delays that tick.
func New(log *logger.Logger, m *metrics.Metrics, timeout time.Duration) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.DelayIfStillRunning(cl))),
		log:     log,
		metrics: m,
		timeout: timeout,
		jobs:    make(map[string]Job),
	}
}

// Register adds jobs. Jobs with an empty spec are skipped.
func (s *Scheduler) Register(jobs ...Job) error {
	for _, job := range jobs {
		if job.Spec == "" {
			s.log.InfoWithContext(context.Background(), "Scheduled job disabled").
				String("job", job.Name).
				Log()
			continue
		}
		if _, dup := s.jobs[job.Name]; dup {
			return fmt.Errorf("job %q registered twice", job.Name)
		}
		job := job
		if _, err := s.cron.AddJob(job.Spec, cron.FuncJob(func() { s.run(job) })); err != nil {
			return fmt.Errorf("invalid schedule %q for job %q: %w", job.Spec, job.Name, err)
		}
		s.jobs[job.Name] = job

		s.log.InfoWithContext(context.Background(), "Scheduled job registered").
			String("job", job.Name).
			String("schedule", job.Spec).
			Log()
	}
	return nil
}

// Trigger runs a registered job immediately, outside its schedule.
func (s *Scheduler) Trigger(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(job)
}

func (s *Scheduler) run(job Job) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = ctxutil.WithRequestInfo(ctx, ctxutil.RequestInfo{RequestID: uuid.NewString()})
	ctx = ctxutil.WithFunction(ctx, "scheduler", job.Name)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
			s.log.ErrorWithContext(ctx, "Scheduled job panicked").
				String("job", job.Name).
				String("stack", string(debug.Stack())).
				Err(err).
				Log()
		}
		if s.metrics != nil {
			s.metrics.SchedulerRun(job.Name, err)
		}
	}()

	n, err := job.Run(ctx)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Scheduled job failed").
			String("job", job.Name).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	s.log.InfoWithContext(ctx, "Scheduled job finished").
		String("job", job.Name).
		Int64("affected", n).
		Duration(time.Since(start)).
		Log()
	return nil
}

func (s *Scheduler) Start() {
	s.log.InfoWithContext(context.Background(), "Scheduler started").
		Int("jobs", len(s.jobs)).
		Log()
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.InfoWithContext(ctx, "Scheduler stopped").Log()
	case <-ctx.Done():
		s.log.WarnWithContext(ctx, "Scheduler stop timed out with jobs still running").Log()
	}
}

// cronLogger routes the cron library's own messages through zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Zap().Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Zap().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
