package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/ploughman/internal/parser"
)

var (
	_ assert.TestingT  = (*Match)(nil)
	_ require.TestingT = (*Match)(nil)
)

func when(text string) parser.Step {
	return parser.Step{Kind: parser.When, Text: text}
}

func TestRegistry_Find(t *testing.T) {
	t.Run("no handlers is unmatched", func(t *testing.T) {
		reg := NewRegistry()
		res := reg.Find(when("I add 3 to the array"))
		assert.Equal(t, Unmatched, res.Outcome)

		var nomatch *NoMatchError
		require.True(t, errors.As(res.Err(), &nomatch))
		assert.Equal(t, "I add 3 to the array", nomatch.Step.Text)
	})

	t.Run("only handlers of the step's kind are considered", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.Given(`^I add (\d) to the array$`, noop))
		assert.Equal(t, Unmatched, reg.Find(when("I add 3 to the array")).Outcome)
	})

	t.Run("single match returns captures", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`^I add (\d) to the (\w+)$`, noop))
		require.NoError(t, reg.When(`^I remove`, noop))

		res := reg.Find(when("I add 3 to the array"))
		require.Equal(t, Matched, res.Outcome)
		require.NoError(t, res.Err())
		assert.Equal(t, `^I add (\d) to the (\w+)$`, res.Handler.Pattern)
		assert.Equal(t, []string{"I add 3 to the array", "3", "array"}, res.Groups)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`^i ADD (\d)`, noop))
		res := reg.Find(when("I add 7 to the array"))
		require.Equal(t, Matched, res.Outcome)
		assert.Equal(t, "I add 7", res.Groups[0])
	})

	t.Run("unanchored patterns match substrings", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`add (\d)`, noop))
		res := reg.Find(when("then I add 5 somewhere"))
		require.Equal(t, Matched, res.Outcome)
		assert.Equal(t, []string{"add 5", "5"}, res.Groups)
	})

	t.Run("two matches are ambiguous and list both patterns", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`^I add (\d) to the array$`, noop))
		require.NoError(t, reg.When(`^I add .* array$`, noop))

		res := reg.Find(when("I add 3 to the array"))
		assert.Equal(t, Ambiguous, res.Outcome)
		require.Len(t, res.Candidates, 2)

		var ambiguous *AmbiguousMatchError
		require.True(t, errors.As(res.Err(), &ambiguous))
		assert.Len(t, ambiguous.Handlers, 2)
		msg := res.Err().Error()
		assert.Contains(t, msg, "too many matches found")
		assert.Contains(t, msg, "`^I add (\\d) to the array$`")
		assert.Contains(t, msg, "`^I add .* array$`")
	})

	t.Run("resolution is deterministic", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, reg.When(`^I add (\d) to the array$`, noop))
		require.NoError(t, reg.When(`^I filter`, noop))

		first := reg.Find(when("I add 3 to the array"))
		for i := 0; i < 5; i++ {
			again := reg.Find(when("I add 3 to the array"))
			assert.Equal(t, first.Outcome, again.Outcome)
			assert.Same(t, first.Handler, again.Handler)
			assert.Equal(t, first.Groups, again.Groups)
		}
	})
}

func TestHandler_Call(t *testing.T) {
	call := func(t *testing.T, fn HandlerFunc) error {
		t.Helper()
		reg := NewRegistry()
		require.NoError(t, reg.Then(`^I should have (\d) items?$`, fn))
		res := reg.Find(parser.Step{Kind: parser.Then, Text: "I should have 2 items"})
		require.Equal(t, Matched, res.Outcome)
		return res.Handler.Call(&Match{Step: res.Step, Groups: res.Groups})
	}

	t.Run("success", func(t *testing.T) {
		var got string
		err := call(t, func(m *Match) error {
			got = m.Group(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "2", got)
	})

	t.Run("returned error", func(t *testing.T) {
		err := call(t, func(m *Match) error { return errors.New("expected 3 items") })
		require.EqualError(t, err, "expected 3 items")
	})

	t.Run("assert failure via testify", func(t *testing.T) {
		err := call(t, func(m *Match) error {
			assert.Equal(m, "3", m.Group(1))
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Not equal")
	})

	t.Run("require failure stops the handler", func(t *testing.T) {
		reached := false
		err := call(t, func(m *Match) error {
			require.Equal(m, "3", m.Group(1))
			reached = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, reached)
		assert.Contains(t, err.Error(), "Not equal")
	})

	t.Run("FailNow without message", func(t *testing.T) {
		err := call(t, func(m *Match) error {
			m.FailNow()
			return nil
		})
		require.EqualError(t, err, "step failed")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		err := call(t, func(m *Match) error {
			var items []int
			_ = items[5]
			return nil
		})
		var perr *PanicError
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, err.Error(), "index out of range")
	})
}

func TestMatch_Group(t *testing.T) {
	m := &Match{Groups: []string{"I add 3", "3"}}
	assert.Equal(t, "I add 3", m.Group(0))
	assert.Equal(t, "3", m.Group(1))
	assert.Equal(t, "", m.Group(2))
	assert.Equal(t, "", m.Group(-1))
}
