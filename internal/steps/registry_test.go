package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ploughman/internal/parser"
)

func noop(*Match) error { return nil }

func TestRegistry_Register(t *testing.T) {
	t.Run("registers valid patterns per kind", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Given(`^I have an empty array$`, noop))
		require.NoError(t, reg.When(`^I add (\d) to the array$`, noop))
		require.NoError(t, reg.Then(`^I should have (\d) items? in the array$`, noop))

		assert.Len(t, reg.Handlers(parser.Given), 1)
		assert.Len(t, reg.Handlers(parser.When), 1)
		assert.Len(t, reg.Handlers(parser.Then), 1)
		assert.NoError(t, reg.Err())
	})

	t.Run("returns and retains error for invalid regex", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Given(`^I have (\d items$`, noop)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid step pattern")
		assert.Empty(t, reg.Handlers(parser.Given))

		require.NoError(t, reg.When(`^fine$`, noop))
		require.Error(t, reg.Err())
		assert.ErrorIs(t, reg.Err(), err)
	})

	t.Run("rejects nil handler", func(t *testing.T) {
		reg := NewRegistry()
		err := reg.Then(`^x$`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil handler")
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		reg := NewRegistry()
		require.Error(t, reg.Step(parser.StepKind(9), `^x$`, noop))
	})

	t.Run("preserves registration order", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`^b$`, noop))
		require.NoError(t, reg.When(`^a$`, noop))
		require.NoError(t, reg.When(`^c$`, noop))

		var patterns []string
		for _, h := range reg.Handlers(parser.When) {
			patterns = append(patterns, h.String())
		}
		assert.Equal(t, []string{`^b$`, `^a$`, `^c$`}, patterns)
	})

	t.Run("handlers listing is a copy", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Given(`^a$`, noop))
		list := reg.Handlers(parser.Given)
		list[0] = nil
		assert.NotNil(t, reg.Handlers(parser.Given)[0])
	})
}

func TestRegistry_Hooks(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.Before(func() { calls = append(calls, "before 1") })
	reg.Before(func() { calls = append(calls, "before 2") })
	reg.After(func() { calls = append(calls, "after 1") })

	for _, h := range reg.BeforeHooks() {
		require.NoError(t, h.Call())
	}
	for _, h := range reg.AfterHooks() {
		require.NoError(t, h.Call())
	}
	assert.Equal(t, []string{"before 1", "before 2", "after 1"}, calls)
}

func TestHook_CallRecoversPanic(t *testing.T) {
	err := Hook(func() { panic("boom") }).Call()
	require.Error(t, err)
	var perr *PanicError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "boom", perr.Value)
}
