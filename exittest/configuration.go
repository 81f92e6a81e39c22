package exittest

import (
	"context"
	"runtime"
	"time"

	"github.com/exitcheck/exitcheck/logger"
	"github.com/exitcheck/exitcheck/metrics"
)

// SpawnHandler creates and observes the child environment for one exit
// test. It returns the observed exit condition, or nil to signal that the
// body was deliberately not invoked (used by tooling that validates
// discovery without running anything), or an error when the child
// environment could not be created or observed.
//
// A mismatched exit condition is not an error: handlers return whatever they
// observed and leave the comparison to the orchestrator.
type SpawnHandler func(ctx context.Context, test *ExitTest) (*ExitCondition, error)

// Configuration carries the state shared by every exit test in a run. It is
// written once, before the run begins, and only read afterwards; mutating a
// Configuration while exit tests are running is unsupported.
type Configuration struct {
	// SpawnHandler runs one exit test. When nil, every exit test fails with
	// ErrNoSpawnHandler.
	SpawnHandler SpawnHandler

	// Logger receives diagnostic output. Defaults to logger.Discard.
	Logger logger.Logger

	// Observers receive lifecycle events for every exit test in the run.
	Observers []Observer

	// Metrics, when non-nil, receives run counters and spawn timings.
	Metrics *metrics.Scope
}

// NewConfiguration returns a Configuration using the default process driver.
// On platforms that cannot create processes the handler is left nil, so every
// exit test fails with ErrNoSpawnHandler.
func NewConfiguration(l logger.Logger) *Configuration {
	cfg := &Configuration{Logger: l}
	if CanSpawnProcesses() {
		driver := &ProcessDriver{Logger: l}
		cfg.SpawnHandler = driver.Spawn
	}
	return cfg
}

// CanSpawnProcesses reports whether this environment can create child
// processes at all. Where it cannot, the default driver is substituted with
// an erroring handler rather than being conditionally compiled away, keeping
// the spawn abstraction uniform across platforms.
func CanSpawnProcesses() bool {
	switch runtime.GOOS {
	case "js", "wasip1", "ios":
		return false
	default:
		return true
	}
}

type configurationKey struct{}

// WithConfiguration associates a run configuration with a context. Run can
// only be called with a context that has passed through here; this is what
// ties an exit test to an active test run.
func WithConfiguration(ctx context.Context, cfg *Configuration) context.Context {
	return context.WithValue(ctx, configurationKey{}, cfg)
}

// ConfigurationFromContext returns the run configuration associated with
// ctx, if any.
func ConfigurationFromContext(ctx context.Context) (*Configuration, bool) {
	cfg, ok := ctx.Value(configurationKey{}).(*Configuration)
	return cfg, ok
}

func (cfg *Configuration) logger() logger.Logger {
	if cfg.Logger == nil {
		return logger.Discard
	}
	return cfg.Logger
}

func (cfg *Configuration) emit(e Event) {
	e.Timestamp = time.Now()
	for _, o := range cfg.Observers {
		o.ObserveEvent(e)
	}
}
