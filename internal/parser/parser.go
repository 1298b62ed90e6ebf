package parser

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"
)

// keyword is the parser's state: the kind of the last recognized line.
type keyword int

const (
	kwUnknown keyword = iota
	kwFeature
	kwScenario
	kwGiven
	kwWhen
	kwThen
	kwAnd
)

var keywords = map[string]keyword{
	"feature":  kwFeature,
	"scenario": kwScenario,
	"given":    kwGiven,
	"when":     kwWhen,
	"then":     kwThen,
	"and":      kwAnd,
}

func (k keyword) stepKind() (StepKind, bool) {
	switch k {
	case kwGiven:
		return Given, true
	case kwWhen:
		return When, true
	case kwThen:
		return Then, true
	default:
		return 0, false
	}
}

// state holds everything in progress while reading sources. Features are
// only appended to out once they are finalized.
type state struct {
	file     string
	line     int
	current  keyword
	feature  *Feature
	scenario *Scenario
	out      []Feature
}

func (s *state) errorf(format string, args ...any) error {
	return &ParseError{File: s.file, Line: s.line, Message: fmt.Sprintf(format, args...)}
}

// commitScenario moves the open scenario into the open feature. A scenario
// with no feature to attach to is dropped.
func (s *state) commitScenario() {
	if s.scenario != nil && s.feature != nil {
		s.feature.Scenarios = append(s.feature.Scenarios, *s.scenario)
	}
	s.scenario = nil
}

// finalize commits the open scenario and feature. It runs at every feature
// boundary and at the end of each source.
func (s *state) finalize() {
	s.commitScenario()
	if s.feature != nil {
		s.out = append(s.out, *s.feature)
	}
	s.feature = nil
}

func (s *state) startFeature(name string) {
	s.finalize()
	s.feature = &Feature{Name: name, File: s.file, Line: s.line}
}

func (s *state) startScenario(name string) {
	s.commitScenario()
	s.scenario = &Scenario{Name: name, File: s.file, Line: s.line}
}

func (s *state) addStep(kind StepKind, text string) {
	if s.scenario == nil {
		return
	}
	s.scenario.Steps = append(s.scenario.Steps, Step{Kind: kind, Text: text, Line: s.line})
}

func (s *state) handle(key, value string) error {
	kw, ok := keywords[strings.ToLower(key)]
	if !ok {
		return s.errorf("unknown keyword %q", key)
	}

	if kw == kwAnd {
		if _, isStep := s.current.stepKind(); !isStep {
			return s.errorf("`and` must follow a given, when or then step")
		}
		kw = s.current
	}

	switch kw {
	case kwFeature:
		s.startFeature(value)
	case kwScenario:
		s.startScenario(value)
	default:
		kind, _ := kw.stepKind()
		s.addStep(kind, value)
	}

	s.current = kw
	return nil
}

// splitLine splits a trimmed line on its first colon, or on its first run of
// whitespace when there is no colon.
func splitLine(line string) (key, value string, ok bool) {
	if before, after, found := strings.Cut(line, ":"); found {
		key = strings.TrimSpace(before)
		return key, strings.TrimSpace(after), key != ""
	}
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx:]), true
}

func (s *state) parseSource(src Source) error {
	s.file = src.Name
	s.line = 0
	s.current = kwUnknown

	for _, raw := range strings.Split(src.Content, "\n") {
		s.line++

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}

		key, value, ok := splitLine(trimmed)
		if !ok {
			return s.errorf("invalid content %q", trimmed)
		}
		if err := s.handle(key, value); err != nil {
			return err
		}
	}

	s.finalize()
	return nil
}

// Parse parses every source in order and concatenates the features found.
// The first error aborts parsing and no features are returned.
func Parse(sources ...Source) ([]Feature, error) {
	s := &state{}
	for _, src := range sources {
		if err := s.parseSource(src); err != nil {
			return nil, err
		}
	}
	return s.out, nil
}

// ParseFS reads the named files from fsys and parses them in order.
func ParseFS(fsys fs.FS, names ...string) ([]Feature, error) {
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		sources = append(sources, Source{Name: name, Content: string(content)})
	}
	return Parse(sources...)
}

// ParseFiles reads paths from the OS filesystem and parses them in order.
func ParseFiles(paths ...string) ([]Feature, error) {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sources = append(sources, Source{Name: path, Content: string(content)})
	}
	return Parse(sources...)
}
