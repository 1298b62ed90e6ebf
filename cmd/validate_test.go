package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllFilesParse(t *testing.T) {
	inTempDir(t)
	writeFeature(t, "features/lists.feature", listsFeature)
	writeFeature(t, "features/empty.feature", "Feature: Empty\n")

	var buf bytes.Buffer
	require.NoError(t, RunValidate(&buf, []string{"features"}))

	out := buf.String()
	assert.Contains(t, out, "ok   features/empty.feature (0 scenarios)\n")
	assert.Contains(t, out, "ok   features/lists.feature (2 scenarios)\n")
	assert.Contains(t, out, "checked 2 files, 2 scenarios\n")
}

func TestValidate_ReportsEveryBadFile(t *testing.T) {
	inTempDir(t)
	writeFeature(t, "features/a.feature", "Feature: A\n  Scenario: S\n    And first\n")
	writeFeature(t, "features/b.feature", listsFeature)
	writeFeature(t, "features/c.feature", "Feature: C\n  just words\n")

	var buf bytes.Buffer
	err := RunValidate(&buf, []string{"features"})
	assert.Equal(t, ExitParseError, exitCode(err))

	out := buf.String()
	assert.Contains(t, out, "err  features/a.feature:3: `and` must follow a given, when or then step\n")
	assert.Contains(t, out, "ok   features/b.feature (2 scenarios)\n")
	assert.Contains(t, out, "err  features/c.feature:2: unknown keyword \"just\"\n")
	assert.Contains(t, out, "checked 3 files, 2 scenarios\n")
}
