package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
)

// Console renders results as they arrive. A feature's name is written as
// soon as it starts; a scenario is written only once it has finished, in
// the failure style if any of its steps failed.
type Console struct {
	writer  io.Writer
	verbose bool
	color   bool

	bold lipgloss.Style
	pass lipgloss.Style
	fail lipgloss.Style
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	r := lipgloss.NewRenderer(c.writer)
	if c.color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	c.bold = r.NewStyle().Bold(true)
	c.pass = r.NewStyle().Foreground(lipgloss.Color("2"))
	c.fail = r.NewStyle().Foreground(lipgloss.Color("1"))
	return c
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

// WithVerbose lists the steps of passing scenarios too.
func WithVerbose(v bool) ConsoleOption {
	return func(c *Console) {
		c.verbose = v
	}
}

// WithColor enables ANSI styling. Callers decide whether the writer is
// interactive.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.color = enabled
	}
}

func (c *Console) FeatureStarted(f *parser.Feature) {
	fmt.Fprintln(c.writer, c.bold.Render("-> "+f.Name))
}

func (c *Console) ScenarioFinished(s *runner.ScenarioReport) {
	if !s.Failed() {
		fmt.Fprintln(c.writer, c.pass.Render("  -> "+s.Name))
		if c.verbose {
			for _, step := range s.Steps {
				fmt.Fprintln(c.writer, c.pass.Render("    -> "+step.Step.String()))
			}
		}
		return
	}

	fmt.Fprintln(c.writer, c.fail.Render("  -> "+s.Name))
	for _, hookErr := range s.HookErrors {
		c.detail(hookErr.Error())
	}
	for _, step := range s.Steps {
		fmt.Fprintln(c.writer, c.fail.Render("    -> "+step.Step.String()))
		if step.Err != nil {
			c.detail(step.Err.Error())
		}
	}
}

// detail writes failure text beneath a step, one styled line at a time.
func (c *Console) detail(text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(c.writer, c.fail.Render("      "+line))
	}
	fmt.Fprintln(c.writer)
}

func (c *Console) Finished(res *runner.Result) error {
	if res.Status() == runner.StatusNoFeatures {
		_, err := fmt.Fprintln(c.writer, "No features found.")
		return err
	}
	_, err := fmt.Fprintf(c.writer, "\n%d scenarios passed, %d scenarios failed.\n", res.Summary.Passed, res.Summary.Failed)
	return err
}

// FormatError writes an error that stopped the run before any scenario.
func (c *Console) FormatError(err error) {
	fmt.Fprintf(c.writer, "%s %v\n", c.fail.Render("Error:"), err)
}
