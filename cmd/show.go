package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/db"
	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/ui"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file:line>",
		Short: "Show the scenario at a location",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return RunShow(cmd.OutOrStdout(), args[0], cfg.History)
		},
	}
}

// RunShow prints the scenario that contains the line at location, along
// with its last recorded status when historyPath holds one.
func RunShow(w io.Writer, location, historyPath string) error {
	file, line, err := parseLocation(location)
	if err != nil {
		return usageError(err)
	}

	features, err := parser.ParseFiles(file)
	if err != nil {
		return err
	}

	feature, scenario, ok := scenarioAt(features, line)
	if !ok {
		return fmt.Errorf("no scenario at %s", location)
	}

	ui.ShowHeader(w, feature)
	ui.ShowStatus(w, lastStatus(historyPath, scenario.Name))
	fmt.Fprintln(w)
	ui.ShowScenario(w, scenario)

	return nil
}

func parseLocation(location string) (string, int, error) {
	idx := strings.LastIndexByte(location, ':')
	if idx <= 0 {
		return "", 0, fmt.Errorf("invalid location %q, want file:line", location)
	}
	line, err := strconv.Atoi(location[idx+1:])
	if err != nil || line < 1 {
		return "", 0, fmt.Errorf("invalid line number in %q", location)
	}
	return location[:idx], line, nil
}

// scenarioAt finds the scenario whose block contains line. A block runs
// from its Scenario line up to the next Scenario or Feature line.
func scenarioAt(features []parser.Feature, line int) (parser.Feature, parser.Scenario, bool) {
	var (
		feature  parser.Feature
		scenario parser.Scenario
		found    bool
	)
	for _, f := range features {
		if f.Line > line {
			break
		}
		found = false
		for _, s := range f.Scenarios {
			if s.Line > line {
				break
			}
			feature, scenario, found = f, s, true
		}
	}
	return feature, scenario, found
}

func lastStatus(historyPath, name string) string {
	if historyPath == "" {
		return "not run"
	}
	if _, err := os.Stat(historyPath); errors.Is(err, os.ErrNotExist) {
		return "not run"
	}

	sqlDB, err := db.Open(historyPath)
	if err != nil {
		return "unknown"
	}
	defer sqlDB.Close()

	results, err := db.ScenarioHistory(sqlDB, name, 1)
	if err != nil {
		return "unknown"
	}
	if len(results) == 0 {
		return "not run"
	}
	return results[0].Status
}
