// Package app owns the worker runtime: the timeout sweeper loop and the
// process wiring that serves it.
package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	workerstorage "github.com/louisbranch/warroom/internal/services/worker/storage"
)

const (
	// DefaultPollInterval is how often the sweeper scans for overdue phases.
	DefaultPollInterval = 5 * time.Minute

	defaultSweeperName = "worker"
)

// ErrSweepInFlight reports a sweep attempt while the previous one still runs.
var ErrSweepInFlight = errors.New("a timeout sweep is already in flight")

// SweepEngine runs one timeout sweep over every eligible game.
type SweepEngine interface {
	SweepTimeouts(ctx context.Context) (gameengine.SweepReport, error)
}

// SweeperConfig wires a sweeper to its collaborators. Engine is required;
// Journal may be nil for processes that do not keep a sweep journal.
type SweeperConfig struct {
	Engine       SweepEngine
	Journal      workerstorage.SweepStore
	Name         string
	PollInterval time.Duration
	Clock        func() time.Time
}

// Sweeper periodically drives the engine's timeout sweep. At most one sweep
// runs at a time; a tick that lands mid-sweep is dropped, not queued.
type Sweeper struct {
	engine   SweepEngine
	journal  workerstorage.SweepStore
	name     string
	interval time.Duration
	clock    func() time.Time

	inFlight atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper from the given configuration.
func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Engine == nil {
		return nil, errors.New("sweep engine is required")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = defaultSweeperName
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Sweeper{
		engine:   cfg.Engine,
		journal:  cfg.Journal,
		name:     name,
		interval: interval,
		clock:    clock,
	}, nil
}

// Start launches the poll loop. The loop sweeps once immediately so a fresh
// process repairs overdue games without waiting a full interval, then keeps
// sweeping until the context ends or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("sweeper already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.loop(loopCtx, done)
	return nil
}

// Stop ends the poll loop and waits for the in-flight sweep, if any, to
// finish. Stopping a sweeper that never started is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsRunning reports whether the poll loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	report, err := s.SweepOnce(ctx)
	switch {
	case errors.Is(err, ErrSweepInFlight) || ctx.Err() != nil:
	case err != nil:
		log.Printf("timeout sweep failed: %v", err)
	case report.TimeoutsProcessed > 0 || report.Failures > 0:
		log.Printf("timeout sweep: examined=%d processed=%d failures=%d",
			report.GamesExamined, report.TimeoutsProcessed, report.Failures)
	}
}

// SweepOnce runs a single guarded sweep and journals its outcome. It returns
// ErrSweepInFlight without touching the engine when a sweep is already
// running.
func (s *Sweeper) SweepOnce(ctx context.Context) (gameengine.SweepReport, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return gameengine.SweepReport{}, ErrSweepInFlight
	}
	defer s.inFlight.Store(false)

	startedAt := s.clock()
	report, err := s.engine.SweepTimeouts(ctx)
	s.journalSweep(ctx, startedAt, report, err)
	return report, err
}

// journalSweep records the sweep outcome. Journal failures only log; the
// sweep result stands either way.
func (s *Sweeper) journalSweep(ctx context.Context, startedAt time.Time, report gameengine.SweepReport, sweepErr error) {
	if s.journal == nil {
		return
	}
	record := workerstorage.SweepRecord{
		Sweeper:           s.name,
		GamesExamined:     int32(report.GamesExamined),
		TimeoutsProcessed: int32(report.TimeoutsProcessed),
		Failures:          int32(report.Failures),
		Outcome:           workerstorage.OutcomeCompleted,
		StartedAt:         startedAt,
		FinishedAt:        s.clock(),
	}
	if sweepErr != nil {
		record.Outcome = workerstorage.OutcomeFailed
		record.LastError = sweepErr.Error()
	}
	if err := s.journal.RecordSweep(ctx, record); err != nil {
		log.Printf("record sweep outcome: %v", err)
	}
}
