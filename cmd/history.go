package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/db"
	"github.com/chriserin/ploughman/internal/ui"
)

const timeFormat = "2006-01-02 15:04:05"

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <scenario name>",
		Short: "Show the recorded outcomes of a scenario, newest first",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return RunHistory(cmd.OutOrStdout(), cfg.History, strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func RunHistory(w io.Writer, historyPath, name string, limit int) error {
	sqlDB, err := openHistory(historyPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	results, err := db.ScenarioHistory(sqlDB, name, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(w, "no recorded runs for %q\n", name)
		return nil
	}

	fmt.Fprintln(w, name)
	for _, sr := range results {
		ui.HistoryRow(w, sr.StartedAt.Local().Format(timeFormat), sr.Status, fmt.Sprintf("%s:%d", sr.File, sr.Line), sr.Failure)
	}
	return nil
}
