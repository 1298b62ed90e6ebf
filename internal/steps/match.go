package steps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chriserin/ploughman/internal/parser"
)

type Outcome int

const (
	Unmatched Outcome = iota
	Matched
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Unmatched:
		return "unmatched"
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving one step. Handler and Groups are set
// when Matched; Candidates is set when Ambiguous.
type Result struct {
	Outcome    Outcome
	Step       parser.Step
	Handler    *Handler
	Groups     []string
	Candidates []*Handler
}

// Err returns the failure a non-matched result stands for.
func (r Result) Err() error {
	switch r.Outcome {
	case Matched:
		return nil
	case Ambiguous:
		return &AmbiguousMatchError{Step: r.Step, Handlers: r.Candidates}
	default:
		return &NoMatchError{Step: r.Step}
	}
}

// Find resolves step against the handlers registered for its kind.
func (r *Registry) Find(step parser.Step) Result {
	var matched []*Handler
	for _, h := range r.handlers[step.Kind] {
		if h.Matches(step.Text) {
			matched = append(matched, h)
		}
	}

	switch len(matched) {
	case 0:
		return Result{Outcome: Unmatched, Step: step}
	case 1:
		h := matched[0]
		return Result{
			Outcome: Matched,
			Step:    step,
			Handler: h,
			Groups:  h.re.FindStringSubmatch(step.Text),
		}
	default:
		return Result{Outcome: Ambiguous, Step: step, Candidates: matched}
	}
}

type NoMatchError struct {
	Step parser.Step
}

func (e *NoMatchError) Error() string {
	return "no matches found"
}

type AmbiguousMatchError struct {
	Step     parser.Step
	Handlers []*Handler
}

func (e *AmbiguousMatchError) Error() string {
	var b strings.Builder
	b.WriteString("too many matches found:")
	for _, h := range e.Handlers {
		fmt.Fprintf(&b, "\n  - `%s`", h.Pattern)
	}
	return b.String()
}

type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Match is handed to a step handler. Groups[0] is the whole matched text
// and the remaining entries are the capture groups in pattern order.
//
// Match implements the TestingT interfaces of testify's assert and require
// packages, so handlers may assert directly against it.
type Match struct {
	Step   parser.Step
	Groups []string
	errs   []string
}

// Group returns capture group i, or "" when there is no such group.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

func (m *Match) Errorf(format string, args ...any) {
	m.errs = append(m.errs, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow stops the handler. Errors recorded so far become the failure.
func (m *Match) FailNow() {
	panic(failNow{})
}

func (m *Match) Helper() {}

func (m *Match) Failed() bool {
	return len(m.errs) > 0
}

func (m *Match) failure() error {
	if len(m.errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(m.errs, "\n"))
}

type failNow struct{}

// Hook runs before or after every scenario.
type Hook func()

// Call runs the hook, turning a panic into an error.
func (h Hook) Call() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()
	h()
	return nil
}
