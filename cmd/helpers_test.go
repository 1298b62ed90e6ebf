package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ploughman/internal/steps"
)

const listsFeature = `Feature: Lists
  Scenario: Adding one
    Given an empty list
    When I add 1
    Then the list has 1 item

  Scenario: Adding two
    Given an empty list
    When I add 1
    And I add 2
    Then the list has 3 items
`

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func writeFeature(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func listRegistry(t *testing.T) *steps.Registry {
	t.Helper()
	reg := steps.NewRegistry()
	var items []int

	reg.Before(func() { items = nil })
	require.NoError(t, reg.Given(`^an empty list$`, func(m *steps.Match) error {
		items = []int{}
		return nil
	}))
	require.NoError(t, reg.When(`^I add (\d+)$`, func(m *steps.Match) error {
		n, err := strconv.Atoi(m.Group(1))
		if err != nil {
			return err
		}
		items = append(items, n)
		return nil
	}))
	require.NoError(t, reg.Then(`^the list has (\d+) items?$`, func(m *steps.Match) error {
		assert.Equal(m, m.Group(1), strconv.Itoa(len(items)))
		return nil
	}))
	return reg
}

// execute runs the full command line and returns its output and exit code.
func execute(t *testing.T, reg *steps.Registry, args ...string) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd(reg)
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)

	err := root.Execute()
	if err == nil {
		return buf.String(), ExitSuccess
	}
	code := reportError(&buf, err)
	return buf.String(), code
}
