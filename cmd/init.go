package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/ploughman/internal/config"
	"github.com/chriserin/ploughman/internal/db"
)

const featuresDir = "features"

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up a project in the current directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunInit(cmd.OutOrStdout())
		},
	}
}

func RunInit(w io.Writer) error {
	// features/ directory
	_, err := os.Stat(featuresDir)
	featuresExist := err == nil
	if err := os.MkdirAll(featuresDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", featuresDir, err)
	}
	if featuresExist {
		fmt.Fprintf(w, "%s/ already exists\n", featuresDir)
	} else {
		fmt.Fprintf(w, "%s/ created\n", featuresDir)
	}

	// config file
	cfg, err := config.FindAndLoadConfig(".")
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("loading config: %w", err)}
	}
	if existing := existingConfig(); existing != "" {
		fmt.Fprintf(w, "%s already exists\n", existing)
	} else {
		if err := cfg.Save(config.DefaultFile); err != nil {
			return fmt.Errorf("writing %s: %w", config.DefaultFile, err)
		}
		fmt.Fprintf(w, "%s created\n", config.DefaultFile)
	}

	// history database
	_, err = os.Stat(cfg.History)
	dbExists := err == nil
	sqlDB, err := db.Open(cfg.History)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintf(w, "%s already exists\n", cfg.History)
	} else {
		fmt.Fprintf(w, "%s created\n", cfg.History)
	}

	// gitignore
	entry := filepath.ToSlash(cfg.History)
	if dir := filepath.Dir(cfg.History); dir != "." {
		entry = filepath.ToSlash(dir) + "/"
	}
	msgs, err := ensureGitignore(entry)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func existingConfig() string {
	for _, name := range config.Filenames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
