package runner

import (
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"time"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/steps"
)

type Config struct {
	// NameFilter, when set, limits the run to scenarios whose name matches.
	NameFilter *regexp.Regexp
	Logger     *slog.Logger
}

type Runner struct {
	registry *steps.Registry
	reporter Reporter
	config   *Config
	log      *slog.Logger
}

// SetupError means the registry holds invalid step definitions. No
// scenario runs when it is returned.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return "invalid step definitions: " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func NewRunner(reg *steps.Registry, reporter Reporter, cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	if reporter == nil {
		reporter = MultiReporter{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Runner{
		registry: reg,
		reporter: reporter,
		config:   cfg,
		log:      log,
	}
}

// RunFS parses the named feature files from fsys and runs them. A parse
// error aborts before anything runs.
func (r *Runner) RunFS(fsys fs.FS, names ...string) (*Result, error) {
	features, err := parser.ParseFS(fsys, names...)
	if err != nil {
		return nil, fmt.Errorf("parsing features: %w", err)
	}
	return r.Run(features)
}

// Run executes features in order. Step failures are recorded in the
// result; the returned error is reserved for setup and reporting failures.
func (r *Runner) Run(features []parser.Feature) (*Result, error) {
	if err := r.registry.Err(); err != nil {
		return nil, &SetupError{Err: err}
	}

	start := time.Now()
	res := &Result{}

	for i := range features {
		feature := &features[i]
		fr := &FeatureReport{Name: feature.Name, File: feature.File}
		res.Features = append(res.Features, fr)
		res.Summary.Features++

		r.reporter.FeatureStarted(feature)

		for _, scenario := range feature.Scenarios {
			if r.config.NameFilter != nil && !r.config.NameFilter.MatchString(scenario.Name) {
				r.log.Debug("scenario filtered out", "scenario", scenario.Name)
				continue
			}

			sr := r.runScenario(feature.Name, scenario)
			fr.Scenarios = append(fr.Scenarios, sr)

			res.Summary.Scenarios++
			res.Summary.Steps += len(sr.Steps)
			if sr.Failed() {
				res.Summary.Failed++
			} else {
				res.Summary.Passed++
			}

			r.reporter.ScenarioFinished(sr)
		}
	}

	res.Summary.Duration = time.Since(start)

	if err := r.reporter.Finished(res); err != nil {
		return res, fmt.Errorf("writing report: %w", err)
	}
	return res, nil
}

func (r *Runner) runScenario(featureName string, scenario parser.Scenario) *ScenarioReport {
	start := time.Now()
	rep := &ScenarioReport{
		Feature: featureName,
		Name:    scenario.Name,
		File:    scenario.File,
		Line:    scenario.Line,
	}

	r.log.Debug("running scenario", "scenario", scenario.Name, "file", scenario.File, "line", scenario.Line)

	for i, hook := range r.registry.BeforeHooks() {
		if err := hook.Call(); err != nil {
			rep.HookErrors = append(rep.HookErrors, &HookError{Phase: "before", Index: i, Err: err})
		}
	}

	if len(rep.HookErrors) == 0 {
		for _, step := range scenario.Steps {
			sr := r.runStep(step)
			rep.Steps = append(rep.Steps, sr)
			if sr.Failed() {
				break
			}
		}
	}
	rep.NotRun = len(scenario.Steps) - len(rep.Steps)

	for i, hook := range r.registry.AfterHooks() {
		if err := hook.Call(); err != nil {
			rep.HookErrors = append(rep.HookErrors, &HookError{Phase: "after", Index: i, Err: err})
		}
	}

	rep.Duration = time.Since(start)
	return rep
}

func (r *Runner) runStep(step parser.Step) StepReport {
	start := time.Now()

	found := r.registry.Find(step)
	if err := found.Err(); err != nil {
		r.log.Debug("step not resolved", "step", step.String(), "outcome", found.Outcome.String())
		return StepReport{Step: step, Err: err, Duration: time.Since(start)}
	}

	r.log.Debug("step matched", "step", step.String(), "pattern", found.Handler.Pattern)

	err := found.Handler.Call(&steps.Match{Step: step, Groups: found.Groups})
	if err != nil {
		r.log.Debug("step failed", "step", step.String(), "err", err)
	}
	return StepReport{Step: step, Err: err, Duration: time.Since(start)}
}
