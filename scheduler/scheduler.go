package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gophora/scout/core"
	"github.com/gophora/scout/storage"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultInterval is how often the full pipeline runs.
	DefaultInterval = 30 * time.Minute

	// DefaultLockTTL bounds how long a crashed run can hold the persisted
	// lock before another process may take over.
	DefaultLockTTL = 45 * time.Minute
)

// RunReport carries the counts of one completed pipeline run back to the
// scheduler for the status snapshot.
type RunReport struct {
	Scraped    int
	New        int
	Approved   int
	Immediate  int
	SkillBased int
	Partial    bool
}

// RunFunc executes one full scrape-validate-route pipeline run.
type RunFunc func(ctx context.Context) (*RunReport, error)

// Scheduler triggers pipeline runs on a fixed interval and on demand,
// guaranteeing at most one run at a time. Overlapping triggers report
// ErrRunInProgress instead of queueing. Exclusion is enforced twice: an
// in-process flag for triggers inside this process, and a TTL lock in
// storage for triggers from another process sharing the store.
type Scheduler struct {
	run      RunFunc
	locks    storage.LockRepository
	runLogs  storage.RunLogRepository
	interval time.Duration
	lockTTL  time.Duration
	logger   *slog.Logger

	running atomic.Bool

	mu   sync.Mutex
	cron *cron.Cron
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithInterval sets the scheduled run interval.
// Default is DefaultInterval.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}
		s.interval = interval
		return nil
	}
}

// WithLockTTL sets the persisted run lock's expiry.
// Default is DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Scheduler) error {
		if ttl <= 0 {
			return fmt.Errorf("lock ttl must be positive, got %s", ttl)
		}
		s.lockTTL = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a scheduler around the given run function.
func New(
	run RunFunc,
	locks storage.LockRepository,
	runLogs storage.RunLogRepository,
	opts ...Option,
) (*Scheduler, error) {
	if run == nil {
		return nil, ErrRunFuncRequired
	}
	if locks == nil {
		return nil, ErrLockRepositoryRequired
	}
	if runLogs == nil {
		return nil, ErrRunLogRepositoryRequired
	}

	s := &Scheduler{
		run:      run,
		locks:    locks,
		runLogs:  runLogs,
		interval: DefaultInterval,
		lockTTL:  DefaultLockTTL,
		logger:   slog.Default().With("component", "scheduler"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins scheduled execution. The context bounds every scheduled run;
// cancel it before calling Stop on shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyStarted
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := c.AddFunc(spec, func() {
		if err := s.TriggerNow(ctx); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				s.logger.Debug("scheduled trigger skipped, run in progress")
				return
			}
			s.logger.Error("scheduled run failed", "err", err)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	s.cron = c
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop halts scheduled execution and waits for an in-flight scheduled run
// to return. Safe to call on a stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs the pipeline immediately. If a run is already in progress,
// in this process or another one sharing the store, it returns
// ErrRunInProgress without starting anything.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	if err := s.locks.AcquireRunLock(ctx, s.lockTTL); err != nil {
		if errors.Is(err, storage.ErrLockHeld) {
			return fmt.Errorf("%w: %w", ErrRunInProgress, err)
		}
		return err
	}
	defer func() {
		if err := s.locks.ReleaseRunLock(ctx); err != nil {
			s.logger.Error("failed to release run lock", "err", err)
		}
	}()

	started := time.Now().UTC()
	s.saveStatus(ctx, &core.RunStatus{InProgress: true, LastStart: started})

	report, runErr := s.run(ctx)

	status := &core.RunStatus{
		LastStart: started,
		LastEnd:   time.Now().UTC(),
	}
	if report != nil {
		status.LastScraped = report.Scraped
		status.LastNew = report.New
		status.LastApproved = report.Approved
		status.LastImmediate = report.Immediate
		status.LastSkillBased = report.SkillBased
		status.LastPartial = report.Partial
	}
	if runErr != nil {
		status.LastError = runErr.Error()
	}
	s.saveStatus(ctx, status)

	return runErr
}

// Status returns the latest run snapshot. A scheduler that never ran
// returns a zero-value status.
func (s *Scheduler) Status(ctx context.Context) (*core.RunStatus, error) {
	status, err := s.runLogs.LoadRunStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		status = &core.RunStatus{}
	}
	return status, nil
}

func (s *Scheduler) saveStatus(ctx context.Context, status *core.RunStatus) {
	if err := s.runLogs.SaveRunStatus(ctx, status); err != nil {
		s.logger.Error("failed to persist run status", "err", err)
	}
}
