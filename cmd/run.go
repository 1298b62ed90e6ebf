package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/config"
	"github.com/chriserin/ploughman/internal/db"
	"github.com/chriserin/ploughman/internal/parser"
	"github.com/chriserin/ploughman/internal/runner"
	"github.com/chriserin/ploughman/internal/steps"
	"github.com/chriserin/ploughman/internal/ui"
)

// RunOptions is the resolved form of the run flags and config file.
type RunOptions struct {
	Paths      []string
	Format     string
	OutputFile string
	Color      bool
	Verbose    bool
	Name       string
	DryRun     bool
	// History is the database the run is recorded in. Empty disables
	// recording.
	History string
	// Log receives debug logs. Nil discards them.
	Log io.Writer
}

func newRunCmd(reg *steps.Registry) *cobra.Command {
	var (
		format     string
		outputFile string
		name       string
		noColor    bool
		verbose    bool
		noHistory  bool
		watch      bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run feature files",
		Long: `Run the scenarios in the given feature files or directories. Directories
are searched for *.feature files. With no paths, the paths from plough.yaml
are used (features/ by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			override := &config.Config{Paths: args}
			if cmd.Flags().Changed("format") {
				override.Format = strings.ToLower(format)
			}
			if noColor {
				override.Color = "never"
			}
			if cmd.Flags().Changed("verbose") {
				override.Verbose = config.BoolPtr(verbose)
			}
			if noHistory {
				override.Record = config.BoolPtr(false)
			}
			cfg = cfg.Merge(override)
			if err := cfg.Validate(); err != nil {
				return usageError(err)
			}

			out := cmd.OutOrStdout()
			opts := RunOptions{
				Paths:      cfg.Paths,
				Format:     cfg.Format,
				OutputFile: outputFile,
				Color:      colorEnabled(cfg.Color, out),
				Verbose:    cfg.GetVerbose(),
				Name:       name,
				DryRun:     dryRun,
			}
			if opts.Verbose {
				opts.Log = cmd.ErrOrStderr()
			}
			if cfg.GetRecord() && !dryRun {
				opts.History = cfg.History
			}

			if watch {
				return WatchFeatures(cmd.Context(), out, reg, opts)
			}

			res, err := RunFeatures(out, reg, opts)
			if err != nil {
				return err
			}
			if res != nil && res.Failed() {
				return &ExitError{Code: ExitTestFailure}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "console", "Output format (console, json, junit)")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only run scenarios whose name matches this regular expression")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List passing steps and write debug logs to stderr")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when feature files change")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check that every step has exactly one definition without running anything")

	return cmd
}

// RunFeatures parses the features under opts.Paths and runs them against
// reg. In dry-run mode the result is nil.
func RunFeatures(w io.Writer, reg *steps.Registry, opts RunOptions) (*runner.Result, error) {
	var filter *regexp.Regexp
	if opts.Name != "" {
		re, err := regexp.Compile(opts.Name)
		if err != nil {
			return nil, usageError(fmt.Errorf("invalid --name pattern: %w", err))
		}
		filter = re
	}

	_, features, err := loadFeatures(opts.Paths)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return nil, dryRun(w, reg, features, filter)
	}

	reporter, closeOutput, err := newReporter(w, opts)
	if err != nil {
		return nil, err
	}
	defer closeOutput()

	log := slog.New(slog.DiscardHandler)
	if opts.Log != nil {
		log = slog.New(slog.NewTextHandler(opts.Log, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	started := time.Now()
	r := runner.NewRunner(reg, reporter, &runner.Config{NameFilter: filter, Logger: log})
	res, err := r.Run(features)
	if err != nil {
		return res, err
	}

	if opts.History != "" {
		if err := recordHistory(opts.History, res, started); err != nil {
			fmt.Fprintf(w, "warning: recording history: %v\n", err)
		} else {
			log.Debug("run recorded", "history", opts.History)
		}
	}

	return res, nil
}

// newReporter picks the reporter for opts.Format. When the report goes to
// a file the console summary is still written to w.
func newReporter(w io.Writer, opts RunOptions) (runner.Reporter, func(), error) {
	out, closeOutput := w, func() {}
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("creating output file: %w", err)
		}
		out, closeOutput = f, func() { f.Close() }
	}

	console := func(w io.Writer, color bool) runner.Reporter {
		return ui.NewConsole(ui.WithWriter(w), ui.WithVerbose(opts.Verbose), ui.WithColor(color))
	}

	var formatted runner.Reporter
	switch opts.Format {
	case "json":
		formatted = ui.NewJSONFormatter(ui.JSONWithWriter(out))
	case "junit":
		formatted = ui.NewJUnitFormatter(ui.JUnitWithWriter(out))
	case "console", "":
		if opts.OutputFile == "" {
			return console(w, opts.Color), closeOutput, nil
		}
		formatted = console(out, false)
	default:
		closeOutput()
		return nil, nil, usageError(fmt.Errorf("unknown format %q", opts.Format))
	}

	if opts.OutputFile == "" {
		return formatted, closeOutput, nil
	}
	return runner.MultiReporter{console(w, opts.Color), formatted}, closeOutput, nil
}

// dryRun reports every step that has no definition or more than one,
// without running anything.
func dryRun(w io.Writer, reg *steps.Registry, features []parser.Feature, filter *regexp.Regexp) error {
	if err := reg.Err(); err != nil {
		return &runner.SetupError{Err: err}
	}

	scenarios, problems := 0, 0
	for _, f := range features {
		for _, s := range f.Scenarios {
			if filter != nil && !filter.MatchString(s.Name) {
				continue
			}
			scenarios++
			for _, step := range s.Steps {
				if err := reg.Find(step).Err(); err != nil {
					problems++
					ui.ErrLine(w, fmt.Sprintf("%s:%d", s.File, step.Line), fmt.Errorf("%s: %w", step, err))
				}
			}
		}
	}

	fmt.Fprintf(w, "checked %d scenarios, %d steps without a single definition\n", scenarios, problems)
	if problems > 0 {
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

func recordHistory(path string, res *runner.Result, started time.Time) error {
	sqlDB, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	_, err = db.RecordRun(sqlDB, res, started)
	return err
}

// colorEnabled resolves the color mode against the writer. Auto means
// color only on a terminal, and never when NO_COLOR is set.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
