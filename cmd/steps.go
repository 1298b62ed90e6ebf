package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
	"github.com/chriserin/ploughman/internal/steps"
	"github.com/chriserin/ploughman/internal/ui"
)

func newStepsCmd(reg *steps.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the registered step definitions",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSteps(cmd.OutOrStdout(), reg)
		},
	}
}

// RunSteps lists patterns per kind in registration order, then reports any
// definition that failed to register.
func RunSteps(w io.Writer, reg *steps.Registry) error {
	for i, kind := range parser.StepKinds {
		if i > 0 {
			fmt.Fprintln(w)
		}
		handlers := reg.Handlers(kind)
		ui.StepsHeader(w, kind, len(handlers))
		for _, h := range handlers {
			ui.StepPattern(w, h.Pattern)
		}
	}
	fmt.Fprintf(w, "\nhooks: %d before, %d after\n", len(reg.BeforeHooks()), len(reg.AfterHooks()))

	if err := reg.Err(); err != nil {
		return &runner.SetupError{Err: err}
	}
	return nil
}
