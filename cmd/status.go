package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/db"
	"github.com/chriserin/ploughman/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize recorded runs and the last run's failures",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return RunStatus(cmd.OutOrStdout(), cfg.History)
		},
	}
}

// openHistory opens an existing history database without creating one.
func openHistory(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no history at %s, run `init` or `run` first", path)
	}
	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return sqlDB, nil
}

func RunStatus(w io.Writer, historyPath string) error {
	sqlDB, err := openHistory(historyPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	count, err := db.RunCount(sqlDB)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Runs: %d\n", count)

	last, err := db.LatestRun(sqlDB)
	if errors.Is(err, db.ErrNoRuns) {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Last run: %s\n", last.StartedAt.Local().Format(timeFormat))
	ui.ShowStatus(w, last.Status)
	fmt.Fprintf(w, "  features: %d, scenarios: %d, passed: %d, failed: %d\n",
		last.Features, last.Scenarios, last.Passed, last.Failed)

	failed, err := db.FailedScenarios(sqlDB, last.ID)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	for _, sr := range failed {
		ui.ErrLine(w, fmt.Sprintf("%s:%d %s", sr.File, sr.Line, sr.Name), errors.New(sr.Failure))
	}
	return nil
}
