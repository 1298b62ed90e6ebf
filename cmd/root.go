package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/config"
	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
	"github.com/chriserin/ploughman/internal/steps"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// ExitError carries the process exit code for an error. A nil Err exits
// quietly; the output already explains the failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// NewRootCmd builds the command tree for a program whose step definitions
// live in reg.
func NewRootCmd(reg *steps.Registry) *cobra.Command {
	root := &cobra.Command{
		Use:           "ploughman",
		Short:         "Run plain text feature files against Go step definitions",
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newRunCmd(reg),
		newListCmd(),
		newShowCmd(),
		newValidateCmd(),
		newStepsCmd(reg),
		newInitCmd(),
		newStatusCmd(),
		newHistoryCmd(),
	)
	return root
}

// Execute runs the command line in args and returns the exit code.
func Execute(reg *steps.Registry, args []string) int {
	root := NewRootCmd(reg)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	return reportError(root.ErrOrStderr(), err)
}

func reportError(w io.Writer, err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return exitErr.Code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var (
		exitErr  *ExitError
		parseErr *parser.ParseError
		setupErr *runner.SetupError
	)
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.As(err, &setupErr):
		return ExitConfigError
	default:
		return ExitTestFailure
	}
}

// loadConfig reads the project config from the working directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FindAndLoadConfig(".")
	if err != nil {
		return nil, &ExitError{Code: ExitConfigError, Err: fmt.Errorf("loading config: %w", err)}
	}
	return cfg, nil
}
