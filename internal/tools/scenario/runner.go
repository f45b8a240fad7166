package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	"github.com/louisbranch/warroom/internal/services/game/storage"
	"github.com/louisbranch/warroom/internal/services/game/storage/sqlite"
)

// Config controls scenario execution.
type Config struct {
	// DBPath is the sqlite file backing the run. Empty means a throwaway
	// database in a temp directory, removed on Close.
	DBPath     string
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against an in-process game engine.
type Runner struct {
	engine     *gameengine.Engine
	store      storage.Store
	clock      *clock
	identities identityProvider
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	cleanup    func() error
}

// clock is a settable time source so scenarios can advance game time past
// phase deadlines without waiting.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(start time.Time) *clock {
	return &clock{now: start}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// syntheticIdentities mints deterministic user ids for scenario seats.
type syntheticIdentities struct {
	mu      sync.Mutex
	counter int
}

func newSyntheticIdentities() *syntheticIdentities {
	return &syntheticIdentities{}
}

func (s *syntheticIdentities) CreateUser(displayName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	slug := strings.ToLower(strings.TrimSpace(displayName))
	slug = strings.ReplaceAll(slug, " ", "-")
	if slug == "" {
		slug = "user"
	}
	return fmt.Sprintf("scenario-%s-%02d", slug, s.counter)
}

// NewRunner opens a sqlite store and prepares a scenario runner.
func NewRunner(cfg Config) (*Runner, error) {
	dbPath := cfg.DBPath
	scratchDir := ""
	if dbPath == "" {
		dir, err := os.MkdirTemp("", "warroom-scenario-")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		scratchDir = dir
		dbPath = filepath.Join(dir, "scenario.db")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		if scratchDir != "" {
			_ = os.RemoveAll(scratchDir)
		}
		return nil, fmt.Errorf("open store: %w", err)
	}

	r, err := newRunnerWithDeps(cfg, runnerDeps{
		store:      store,
		clock:      newClock(time.Now().UTC()),
		identities: newSyntheticIdentities(),
	})
	if err != nil {
		_ = store.Close()
		if scratchDir != "" {
			_ = os.RemoveAll(scratchDir)
		}
		return nil, err
	}
	r.cleanup = func() error {
		closeErr := store.Close()
		if scratchDir != "" {
			if removeErr := os.RemoveAll(scratchDir); closeErr == nil {
				closeErr = removeErr
			}
		}
		return closeErr
	}
	return r, nil
}

// newRunnerWithDeps builds a Runner from pre-built dependencies.
// Config defaults (logger, timeout) are applied here so they are testable.
func newRunnerWithDeps(cfg Config, deps runnerDeps) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	if deps.store == nil {
		return nil, errors.New("store is required")
	}
	if deps.clock == nil {
		deps.clock = newClock(time.Now().UTC())
	}
	if deps.identities == nil {
		deps.identities = newSyntheticIdentities()
	}

	engine, err := gameengine.New(gameengine.Config{
		Store: deps.store,
		Clock: deps.clock.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	assertions := Assertions{Mode: cfg.Assertions, Logger: logger}

	return &Runner{
		engine:     engine,
		store:      deps.store,
		clock:      deps.clock,
		identities: deps.identities,
		assertions: assertions,
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.cleanup != nil {
		return r.cleanup()
	}
	return nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	runner, err := NewRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps against the engine.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		users:    map[string]string{},
		personas: map[string]string{},
	}

	for index, step := range scenario.Steps {
		step := step
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
