package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/chriserin/ploughman/internal/parser"
)

type StepReport struct {
	Step     parser.Step
	Err      error
	Duration time.Duration
}

func (r StepReport) Failed() bool {
	return r.Err != nil
}

// HookError is a Before or After hook that panicked.
type HookError struct {
	Phase string // "before" or "after"
	Index int
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook %d: %v", e.Phase, e.Index+1, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// ScenarioReport is complete once the scenario's After hooks have run.
// Steps holds only the steps that were attempted.
type ScenarioReport struct {
	Feature    string
	Name       string
	File       string
	Line       int
	Steps      []StepReport
	HookErrors []error
	NotRun     int
	Duration   time.Duration
}

func (r *ScenarioReport) Failed() bool {
	return r.Failure() != nil
}

// Failure returns the failing step's error, or the joined hook errors when
// no step failed.
func (r *ScenarioReport) Failure() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return errors.Join(r.HookErrors...)
}

type FeatureReport struct {
	Name      string
	File      string
	Scenarios []*ScenarioReport
}

func (r *FeatureReport) Failed() int {
	n := 0
	for _, s := range r.Scenarios {
		if s.Failed() {
			n++
		}
	}
	return n
}

type Summary struct {
	Features  int
	Scenarios int
	Passed    int
	Failed    int
	Steps     int
	Duration  time.Duration
}

type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusNoFeatures
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusNoFeatures:
		return "no-features"
	default:
		return "unknown"
	}
}

type Result struct {
	Features []*FeatureReport
	Summary  Summary
}

// Status distinguishes "no features found" from a suite whose features
// simply hold no scenarios.
func (r *Result) Status() Status {
	switch {
	case r.Summary.Features == 0:
		return StatusNoFeatures
	case r.Summary.Failed > 0:
		return StatusFailed
	default:
		return StatusPassed
	}
}

func (r *Result) Failed() bool {
	return r.Status() != StatusPassed
}

// Reporter receives the report tree as it is built. FeatureStarted is
// called before any of the feature's scenarios run; ScenarioFinished gets
// each scenario only once it is complete.
type Reporter interface {
	FeatureStarted(f *parser.Feature)
	ScenarioFinished(r *ScenarioReport)
	Finished(res *Result) error
}

// MultiReporter sends every event to each of its reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) FeatureStarted(f *parser.Feature) {
	for _, r := range m {
		r.FeatureStarted(f)
	}
}

func (m MultiReporter) ScenarioFinished(s *ScenarioReport) {
	for _, r := range m {
		r.ScenarioFinished(s)
	}
}

func (m MultiReporter) Finished(res *Result) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Finished(res))
	}
	return errors.Join(errs...)
}
