package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ploughman/internal/runner"
)

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	require.NoError(t, replay(f, sampleResult()))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "failed", out.Status)
	assert.Equal(t, JSONSummary{Features: 1, Scenarios: 2, Passed: 1, Failed: 1, Steps: 5, DurationMS: 5}, out.Summary)
	require.Len(t, out.Features, 1)

	scenarios := out.Features[0].Scenarios
	require.Len(t, scenarios, 2)
	assert.True(t, scenarios[0].Passed)
	assert.Len(t, scenarios[0].Steps, 3)

	assert.False(t, scenarios[1].Passed)
	assert.Equal(t, 1, scenarios[1].NotRun)
	require.Len(t, scenarios[1].Steps, 2)
	assert.Equal(t, "When", scenarios[1].Steps[1].Keyword)
	assert.Equal(t, 9, scenarios[1].Steps[1].Line)
	assert.Equal(t, "expected 2 items\nbut got 3", scenarios[1].Steps[1].Error)
}

func TestJSONFormatterNoFeatures(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	require.NoError(t, f.Finished(&runner.Result{}))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "no-features", out.Status)
	assert.Empty(t, out.Features)
}
