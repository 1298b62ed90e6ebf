// Package ploughman runs plain text feature files against step definitions
// written in Go.
//
// A step-definition program builds a Registry, registers Given, When and
// Then handlers against regular expressions, and hands the registry to
// Main:
//
//	reg := ploughman.New()
//	reg.Given(`^I have an empty array$`, func(m *ploughman.Match) error {
//		array = nil
//		return nil
//	})
//	ploughman.Main(reg)
//
// Patterns match case-insensitively anywhere in the step text. A step that
// matches no pattern, or more than one, fails its scenario.
package ploughman

import (
	"os"

	"github.com/chriserin/ploughman/cmd"
	"github.com/chriserin/ploughman/internal/runner"
	"github.com/chriserin/ploughman/internal/steps"
)

type (
	Registry    = steps.Registry
	Match       = steps.Match
	HandlerFunc = steps.HandlerFunc
	Hook        = steps.Hook
	Result      = runner.Result
)

func New() *Registry {
	return steps.NewRegistry()
}

// Main runs the command line against reg and exits the process.
func Main(reg *Registry) {
	os.Exit(cmd.Execute(reg, os.Args[1:]))
}

// Run runs the feature files under paths, printing the console report to
// stdout. The result is nil when the features could not be loaded.
func Run(reg *Registry, paths ...string) (*Result, error) {
	return cmd.RunFeatures(os.Stdout, reg, cmd.RunOptions{
		Paths:  paths,
		Format: "console",
	})
}
