package steps

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/chriserin/ploughman/internal/parser"
)

// HandlerFunc implements a step. It fails the step by returning an error,
// by calling m.Errorf or m.FailNow, or by panicking.
type HandlerFunc func(m *Match) error

// Handler is a compiled step definition.
type Handler struct {
	Kind    parser.StepKind
	Pattern string // as registered, without the case-insensitive flag
	re      *regexp.Regexp
	fn      HandlerFunc
}

func (h *Handler) String() string {
	return h.Pattern
}

// Matches reports whether the pattern matches anywhere in text.
func (h *Handler) Matches(text string) bool {
	return h.re.MatchString(text)
}

// Call runs the handler against m and returns the step's failure, if any.
func (h *Handler) Call(m *Match) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if _, ok := rec.(failNow); ok {
			err = m.failure()
			if err == nil {
				err = errors.New("step failed")
			}
			return
		}
		err = &PanicError{Value: rec}
	}()

	return errors.Join(h.fn(m), m.failure())
}

type Registry struct {
	handlers map[parser.StepKind][]*Handler
	before   []Hook
	after    []Hook
	errs     []error
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[parser.StepKind][]*Handler),
	}
}

func (r *Registry) Given(pattern string, fn HandlerFunc) error {
	return r.Step(parser.Given, pattern, fn)
}

func (r *Registry) When(pattern string, fn HandlerFunc) error {
	return r.Step(parser.When, pattern, fn)
}

func (r *Registry) Then(pattern string, fn HandlerFunc) error {
	return r.Step(parser.Then, pattern, fn)
}

// Step registers fn for steps of kind whose text matches pattern. A failed
// registration is returned and also retained in Err.
func (r *Registry) Step(kind parser.StepKind, pattern string, fn HandlerFunc) error {
	if err := r.add(kind, pattern, fn); err != nil {
		r.errs = append(r.errs, err)
		return err
	}
	return nil
}

func (r *Registry) add(kind parser.StepKind, pattern string, fn HandlerFunc) error {
	if !slices.Contains(parser.StepKinds, kind) {
		return fmt.Errorf("invalid step kind %d for pattern %q", int(kind), pattern)
	}
	if fn == nil {
		return fmt.Errorf("nil handler for %s %q", kind, pattern)
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid step pattern for %s %q: %w", kind, pattern, err)
	}

	r.handlers[kind] = append(r.handlers[kind], &Handler{
		Kind:    kind,
		Pattern: pattern,
		re:      re,
		fn:      fn,
	})
	return nil
}

func (r *Registry) Before(h Hook) {
	r.before = append(r.before, h)
}

func (r *Registry) After(h Hook) {
	r.after = append(r.after, h)
}

// Err returns every registration error, or nil when setup succeeded.
func (r *Registry) Err() error {
	return errors.Join(r.errs...)
}

// Handlers returns the handlers of kind in registration order.
func (r *Registry) Handlers(kind parser.StepKind) []*Handler {
	return slices.Clone(r.handlers[kind])
}

func (r *Registry) BeforeHooks() []Hook {
	return slices.Clone(r.before)
}

func (r *Registry) AfterHooks() []Hook {
	return slices.Clone(r.after)
}
