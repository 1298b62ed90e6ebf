package ui

import (
	"encoding/json"
	"io"
	"os"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
)

type JSONOutput struct {
	Status   string        `json:"status"`
	Summary  JSONSummary   `json:"summary"`
	Features []JSONFeature `json:"features"`
}

type JSONSummary struct {
	Features   int   `json:"features"`
	Scenarios  int   `json:"scenarios"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	Steps      int   `json:"steps"`
	DurationMS int64 `json:"durationMs"`
}

type JSONFeature struct {
	Name      string         `json:"name"`
	File      string         `json:"file"`
	Scenarios []JSONScenario `json:"scenarios"`
}

type JSONScenario struct {
	Name       string     `json:"name"`
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Passed     bool       `json:"passed"`
	Steps      []JSONStep `json:"steps"`
	NotRun     int        `json:"notRun,omitempty"`
	HookErrors []string   `json:"hookErrors,omitempty"`
	DurationMS int64      `json:"durationMs"`
}

type JSONStep struct {
	Keyword    string `json:"keyword"`
	Text       string `json:"text"`
	Line       int    `json:"line"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

// JSONFormatter writes the whole report tree once the run has finished.
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FeatureStarted(*parser.Feature) {}

func (f *JSONFormatter) ScenarioFinished(*runner.ScenarioReport) {}

func (f *JSONFormatter) Finished(res *runner.Result) error {
	out := JSONOutput{
		Status: res.Status().String(),
		Summary: JSONSummary{
			Features:   res.Summary.Features,
			Scenarios:  res.Summary.Scenarios,
			Passed:     res.Summary.Passed,
			Failed:     res.Summary.Failed,
			Steps:      res.Summary.Steps,
			DurationMS: res.Summary.Duration.Milliseconds(),
		},
		Features: make([]JSONFeature, 0, len(res.Features)),
	}

	for _, fr := range res.Features {
		jf := JSONFeature{
			Name:      fr.Name,
			File:      fr.File,
			Scenarios: make([]JSONScenario, 0, len(fr.Scenarios)),
		}
		for _, sr := range fr.Scenarios {
			js := JSONScenario{
				Name:       sr.Name,
				File:       sr.File,
				Line:       sr.Line,
				Passed:     !sr.Failed(),
				Steps:      make([]JSONStep, 0, len(sr.Steps)),
				NotRun:     sr.NotRun,
				DurationMS: sr.Duration.Milliseconds(),
			}
			for _, herr := range sr.HookErrors {
				js.HookErrors = append(js.HookErrors, herr.Error())
			}
			for _, step := range sr.Steps {
				st := JSONStep{
					Keyword:    step.Step.Kind.String(),
					Text:       step.Step.Text,
					Line:       step.Step.Line,
					Passed:     step.Err == nil,
					DurationMS: step.Duration.Milliseconds(),
				}
				if step.Err != nil {
					st.Error = step.Err.Error()
				}
				js.Steps = append(js.Steps, st)
			}
			jf.Scenarios = append(jf.Scenarios, js)
		}
		out.Features = append(out.Features, jf)
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
