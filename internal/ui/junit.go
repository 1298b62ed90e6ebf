package ui

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
)

// JUnit XML structures

type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite is one feature.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	File      string          `xml:"file,attr,omitempty"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase is one scenario.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	File      string        `xml:"file,attr,omitempty"`
	Line      int           `xml:"line,attr,omitempty"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitFormatter struct {
	writer io.Writer
	now    func() time.Time
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FeatureStarted(*parser.Feature) {}

func (f *JUnitFormatter) ScenarioFinished(*runner.ScenarioReport) {}

func (f *JUnitFormatter) Finished(res *runner.Result) error {
	suites := JUnitTestSuites{
		Name:       "ploughman",
		Tests:      res.Summary.Scenarios,
		Failures:   res.Summary.Failed,
		Time:       res.Summary.Duration.Seconds(),
		Timestamp:  f.now().Format(time.RFC3339),
		TestSuites: make([]JUnitTestSuite, 0, len(res.Features)),
	}

	for _, fr := range res.Features {
		suite := JUnitTestSuite{
			Name:      fr.Name,
			File:      fr.File,
			Tests:     len(fr.Scenarios),
			Failures:  fr.Failed(),
			TestCases: make([]JUnitTestCase, 0, len(fr.Scenarios)),
		}
		for _, sr := range fr.Scenarios {
			suite.Time += sr.Duration.Seconds()
			tc := JUnitTestCase{
				Name:      sr.Name,
				ClassName: fr.Name,
				File:      sr.File,
				Line:      sr.Line,
				Time:      sr.Duration.Seconds(),
			}
			if failure := sr.Failure(); failure != nil {
				tc.Failure = &JUnitFailure{
					Message: firstLine(failure.Error()),
					Type:    failureType(sr),
					Content: failureContent(sr),
				}
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.writer)
	return err
}

func failureType(sr *runner.ScenarioReport) string {
	if len(sr.HookErrors) > 0 {
		return "HookError"
	}
	return "StepFailure"
}

// failureContent lists the attempted steps with the failure beneath the
// step that raised it.
func failureContent(sr *runner.ScenarioReport) string {
	var b strings.Builder
	for _, herr := range sr.HookErrors {
		fmt.Fprintf(&b, "%s\n", herr)
	}
	for _, step := range sr.Steps {
		fmt.Fprintf(&b, "%s\n", step.Step)
		if step.Err != nil {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(step.Err.Error(), "\n", "\n  "))
		}
	}
	return b.String()
}
