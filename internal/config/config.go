// Package config loads the project file that supplies defaults for the
// command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config mirrors plough.yaml. Flags given on the command line override it.
type Config struct {
	Paths   []string `yaml:"paths,omitempty"`
	Format  string   `yaml:"format,omitempty"`
	Color   string   `yaml:"color,omitempty"`
	Verbose *bool    `yaml:"verbose,omitempty"`
	History string   `yaml:"history,omitempty"`
	Record  *bool    `yaml:"record,omitempty"`
}

// Filenames are searched in order.
var Filenames = []string{
	"plough.yaml",
	".plough.yaml",
}

var (
	Formats     = []string{"console", "json", "junit"}
	ColorModes  = []string{"auto", "always", "never"}
	DefaultFile = Filenames[0]
)

func DefaultConfig() *Config {
	return &Config{
		Paths:   []string{"features"},
		Format:  "console",
		Color:   "auto",
		Verbose: BoolPtr(false),
		History: filepath.Join(".plough", "history.db"),
		Record:  BoolPtr(true),
	}
}

func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

func (c *Config) GetRecord() bool {
	return getBool(c.Record, true)
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindAndLoadConfig loads the first config file found in dir, or returns
// the defaults when there is none.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, name := range Filenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// Merge returns a copy of c with every field set in other taking precedence.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c
	if len(other.Paths) > 0 {
		result.Paths = other.Paths
	}
	if other.Format != "" {
		result.Format = other.Format
	}
	if other.Color != "" {
		result.Color = other.Color
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.History != "" {
		result.History = other.History
	}
	if other.Record != nil {
		result.Record = other.Record
	}
	return &result
}

func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(Formats, c.Format) {
		errs = append(errs, fmt.Errorf("unknown format %q (want one of %v)", c.Format, Formats))
	}
	if !slices.Contains(ColorModes, c.Color) {
		errs = append(errs, fmt.Errorf("unknown color mode %q (want one of %v)", c.Color, ColorModes))
	}
	if c.GetRecord() && c.History == "" {
		errs = append(errs, errors.New("history path must be set when record is enabled"))
	}
	return errors.Join(errs...)
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
