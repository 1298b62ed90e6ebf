package cmd

import (
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/ui"
)

func newListCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List scenarios without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				paths = cfg.Paths
			}
			return RunList(cmd.OutOrStdout(), paths, name)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only list scenarios whose name matches this regular expression")
	return cmd
}

type listRow struct {
	location string
	feature  string
	scenario string
}

func RunList(w io.Writer, paths []string, name string) error {
	var filter *regexp.Regexp
	if name != "" {
		re, err := regexp.Compile(name)
		if err != nil {
			return usageError(fmt.Errorf("invalid --name pattern: %w", err))
		}
		filter = re
	}

	_, features, err := loadFeatures(paths)
	if err != nil {
		return err
	}

	var results []listRow
	for _, f := range features {
		for _, s := range f.Scenarios {
			if filter != nil && !filter.MatchString(s.Name) {
				continue
			}
			results = append(results, listRow{
				location: fmt.Sprintf("%s:%d", s.File, s.Line),
				feature:  f.Name,
				scenario: s.Name,
			})
		}
	}

	// Compute column widths
	locWidth, featureWidth := 0, 0
	for _, r := range results {
		locWidth = max(locWidth, len(r.location))
		featureWidth = max(featureWidth, len(r.feature))
	}

	for _, r := range results {
		ui.ListRow(w, r.location, r.feature, r.scenario, locWidth, featureWidth)
	}

	return nil
}
