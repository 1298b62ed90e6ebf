package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/ui"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Check that feature files parse",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				paths = cfg.Paths
			}
			return RunValidate(cmd.OutOrStdout(), paths)
		},
	}
}

// RunValidate parses each file on its own so that one bad file does not
// hide the state of the others.
func RunValidate(w io.Writer, paths []string) error {
	files, err := collectFiles(paths)
	if err != nil {
		return usageError(err)
	}

	var scenarios, failures int
	for _, file := range files {
		features, err := parser.ParseFiles(file)
		if err != nil {
			failures++
			var perr *parser.ParseError
			if errors.As(err, &perr) {
				ui.ErrLine(w, fmt.Sprintf("%s:%d", perr.File, perr.Line), errors.New(perr.Message))
			} else {
				ui.ErrLine(w, file, err)
			}
			continue
		}

		n := 0
		for _, f := range features {
			n += len(f.Scenarios)
		}
		scenarios += n
		ui.OkLine(w, file, n)
	}

	ui.SummaryLine(w, len(files), scenarios)
	if failures > 0 {
		return &ExitError{Code: ExitParseError}
	}
	return nil
}
