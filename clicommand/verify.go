package clicommand

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/buildkite/roko"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/exitcheck/exitcheck/exittest"
	"github.com/exitcheck/exitcheck/logger"
	"github.com/exitcheck/exitcheck/metrics"
	"github.com/exitcheck/exitcheck/process"
)

const verifyHelpDescription = `Usage:

    exitcheck verify [options...] <scenarios.yaml>

Description:

Runs every scenario in a YAML file and reports which ones terminated with
their expected exit condition. Scenarios run concurrently, bounded by
--parallel. A scenario with retries is re-run until it matches or the
retries are exhausted; the core comparison is still one observation per
attempt.

Example scenario file:

    scenarios:
      - name: clean exit
        command: ["true"]
        expect: success
      - name: exits three
        command: ["sh", "-c", "exit 3"]
        expect: code=3
        retries: 2
        timeout: 10s`

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Scenario is one entry in a verification file.
type Scenario struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Expect  string   `yaml:"expect"`
	Retries int      `yaml:"retries"`
	Timeout Duration `yaml:"timeout"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

type VerifyConfig struct {
	Parallel   int
	StatsdHost string
}

var VerifyCommand = cli.Command{
	Name:        "verify",
	Usage:       "Run a file of scenarios and check each one's exit condition",
	Description: verifyHelpDescription,
	Flags: append(globalFlags(),
		cli.IntFlag{
			Name:   "parallel",
			Value:  4,
			Usage:  "How many scenarios to run concurrently",
			EnvVar: "EXITCHECK_PARALLEL",
		},
		cli.StringFlag{
			Name:   "statsd-host",
			Usage:  "Report scenario metrics to this statsd host",
			EnvVar: "EXITCHECK_STATSD_HOST",
		},
	),
	Action: func(c *cli.Context) error {
		cfg := VerifyConfig{
			Parallel:   c.Int("parallel"),
			StatsdHost: c.String("statsd-host"),
		}

		l := setupLogger(c)

		if c.NArg() != 1 {
			return cli.NewExitError("verify takes exactly one scenario file", 1)
		}

		scenarios, err := loadScenarios(c.Args().First())
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		collector := metrics.NewCollector(l, metrics.CollectorConfig{
			Enabled:    cfg.StatsdHost != "",
			StatsdHost: cfg.StatsdHost,
		})
		if err := collector.Start(); err != nil {
			return cli.NewExitError(fmt.Sprintf("starting metrics: %v", err), 1)
		}
		defer collector.Stop() //nolint:errcheck // best-effort flush on exit
		scope := collector.Scope(metrics.Tags{"command": "verify"})

		failed, err := verifyScenarios(context.Background(), l, scope, scenarios, cfg.Parallel)
		if err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		if failed > 0 {
			return cli.NewExitError(fmt.Sprintf("%d of %d scenarios failed", failed, len(scenarios)), 1)
		}

		l.Notice("All %d scenarios passed", len(scenarios))
		return nil
	},
}

func loadScenarios(path string) ([]Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s contains no scenarios", path)
	}

	for i, s := range file.Scenarios {
		if len(s.Command) == 0 {
			return nil, fmt.Errorf("scenario %d (%q) has no command", i, s.Name)
		}
		if _, err := exittest.ParseCondition(s.Expect); err != nil {
			return nil, fmt.Errorf("scenario %d (%q): %w", i, s.Name, err)
		}
	}

	return file.Scenarios, nil
}

func verifyScenarios(ctx context.Context, l logger.Logger, scope *metrics.Scope, scenarios []Scenario, parallel int) (int, error) {
	if parallel < 1 {
		parallel = 1
	}

	var (
		mu     sync.Mutex
		failed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for _, s := range scenarios {
		s := s
		g.Go(func() error {
			err := runScenario(ctx, l, s)

			status := "passed"
			if err != nil {
				status = "failed"
				l.Error("Scenario %q failed: %v", s.Name, err)
				mu.Lock()
				failed++
				mu.Unlock()
			} else {
				l.Info("Scenario %q passed", s.Name)
			}
			scope.Count("verify.scenarios", 1, metrics.Tags{"status": status})

			// Scenario failures are tallied, not propagated: one failing
			// scenario must not cancel its siblings.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failed, err
	}
	return failed, nil
}

func runScenario(ctx context.Context, l logger.Logger, s Scenario) error {
	expected, err := exittest.ParseCondition(s.Expect)
	if err != nil {
		return err
	}

	r := roko.NewRetrier(
		roko.WithMaxAttempts(s.Retries+1),
		roko.WithStrategy(roko.Constant(time.Second)),
		roko.WithJitter(),
	)

	return r.DoWithContext(ctx, func(r *roko.Retrier) error {
		attemptCtx := ctx
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, time.Duration(s.Timeout))
			defer cancel()
		}

		p := process.New(l, process.Config{
			Path: s.Command[0],
			Args: s.Command[1:],
			Env:  os.Environ(),
		})
		if err := p.Run(attemptCtx); err != nil {
			return fmt.Errorf("running %q: %w", s.Name, err)
		}

		ws, err := p.WaitStatus()
		if err != nil {
			return err
		}

		if observed := exittest.ClassifyWaitStatus(ws); !expected.Matches(observed) {
			return fmt.Errorf("expected %s, observed %s", expected, observed)
		}
		return nil
	})
}
