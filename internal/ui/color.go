package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/ploughman/internal/parser"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	keywordStyle = lipgloss.NewStyle().Bold(true)
)

func OkLine(w io.Writer, path string, scenarios int) {
	fmt.Fprintf(w, "%s   %s (%d scenarios)\n", okStyle.Render("ok"), path, scenarios)
}

func ErrLine(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "%s  %s: %v\n", errStyle.Render("err"), path, err)
}

func SummaryLine(w io.Writer, files, scenarios int) {
	fmt.Fprintf(w, "checked %d files, %d scenarios\n", files, scenarios)
}

func ListRow(w io.Writer, location, feature, scenario string, locWidth, featureWidth int) {
	fmt.Fprintf(w, "%-*s  %s  %s\n", locWidth, location, faintStyle.Render(fmt.Sprintf("%-*s", featureWidth, feature)), scenario)
}

func ShowHeader(w io.Writer, feature parser.Feature) {
	fmt.Fprintf(w, "%s %s\n", keywordStyle.Render("Feature:"), feature.Name)
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("%s:%d", feature.File, feature.Line)))
}

func ShowScenario(w io.Writer, scenario parser.Scenario) {
	fmt.Fprintf(w, "  %s %s\n", keywordStyle.Render("Scenario:"), scenario.Name)
	var prev parser.StepKind = -1
	for _, step := range scenario.Steps {
		keyword := step.Kind.String()
		if step.Kind == prev {
			keyword = "And"
		}
		prev = step.Kind
		fmt.Fprintf(w, "    %s %s\n", keywordStyle.Render(keyword), step.Text)
	}
}

func ShowStatus(w io.Writer, status string) {
	style := faintStyle
	switch status {
	case "passed":
		style = okStyle
	case "failed":
		style = errStyle
	}
	fmt.Fprintf(w, "status: %s\n", style.Render(status))
}

func StepsHeader(w io.Writer, kind parser.StepKind, count int) {
	fmt.Fprintf(w, "%s (%d)\n", keywordStyle.Render(kind.String()), count)
}

func StepPattern(w io.Writer, pattern string) {
	fmt.Fprintf(w, "  %s\n", pattern)
}

func HistoryRow(w io.Writer, when, status, location, detail string) {
	style := okStyle
	if status != "passed" {
		style = errStyle
	}
	line := fmt.Sprintf("  %s  %-6s  %s", when, style.Render(status), location)
	if detail != "" {
		line += "  " + faintStyle.Render(firstLine(detail))
	}
	fmt.Fprintln(w, line)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
