package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobState is the last known outcome of a job
type JobState struct {
	Name         string        `json:"name"`
	Schedule     string        `json:"schedule"`
	Status       JobStatus     `json:"status"`
	LastRunAt    *time.Time    `json:"lastRunAt,omitempty"`
	LastDuration time.Duration `json:"lastDuration"`
	LastError    string        `json:"lastError,omitempty"`
	NextRunAt    *time.Time    `json:"nextRunAt,omitempty"`
	Runs         int           `json:"runs"`
	Failures     int           `json:"failures"`
}

// Config holds scheduler configuration
type Config struct {
	// WithSeconds accepts six-field expressions
	WithSeconds bool
	// JobTimeout bounds a single run; zero means no limit
	JobTimeout time.Duration
}

type entry struct {
	job     Job
	id      cron.EntryID
	state   JobState
	running bool
}

// Scheduler runs jobs on cron expressions. A run is skipped when the
// previous run of the same job has not finished.
type Scheduler struct {
	cron   *cron.Cron
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	started bool
}

// New creates a scheduler. Jobs must be registered before Start.
func New(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{logger: logger.Sugar()}

	opts := []cron.Option{
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	}
	if cfg.WithSeconds {
		opts = append(opts, cron.WithSeconds())
	}
	return &Scheduler{
		cron:    cron.New(opts...),
		config:  cfg,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register schedules job on spec.
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	e := &entry{job: job, state: JobState{Name: name, Schedule: spec, Status: JobStatusIdle}}
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.run(context.Background(), e); err != nil && !errors.Is(err, ErrJobRunning) {
			s.logger.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}
	e.id = id
	s.entries[name] = e
	s.logger.Info("Job registered", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// RunNow executes a registered job synchronously outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, e)
}

func (s *Scheduler) run(ctx context.Context, e *entry) (err error) {
	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		s.logger.Warn("Skipping run, previous run still active", zap.String("job", e.state.Name))
		return ErrJobRunning
	}
	e.running = true
	start := time.Now()
	e.state.Status = JobStatusRunning
	e.state.LastRunAt = &start
	s.mu.Unlock()

	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.state.Name, r)
		}
		s.finish(e, start, err)
	}()

	return e.job.Run(ctx)
}

func (s *Scheduler) finish(e *entry, start time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.running = false
	e.state.Runs++
	e.state.LastDuration = time.Since(start)
	if err != nil {
		e.state.Status = JobStatusFailed
		e.state.LastError = err.Error()
		e.state.Failures++
		return
	}
	e.state.Status = JobStatusSuccess
	e.state.LastError = ""
	s.logger.Info("Job completed", zap.String("job", e.state.Name), zap.Duration("duration", e.state.LastDuration))
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.entries)))
}

// Stop stops firing jobs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// States returns a snapshot of every job, sorted by name.
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobState, 0, len(s.entries))
	for _, e := range s.entries {
		st := e.state
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			st.NextRunAt = &next
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// FuncJob adapts a function to Job
type FuncJob struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncJob creates a named job from fn
func NewFuncJob(name string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{name: name, fn: fn}
}

// Name implements Job
func (j *FuncJob) Name() string { return j.name }

// Run implements Job
func (j *FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }
