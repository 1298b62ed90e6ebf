package parser

import "fmt"

// StepKind is the concrete kind of a step. And is not a kind: it is
// resolved to the preceding kind while parsing.
type StepKind int

const (
	Given StepKind = iota
	When
	Then
)

// StepKinds lists the concrete kinds in display order.
var StepKinds = []StepKind{Given, When, Then}

func (k StepKind) String() string {
	switch k {
	case Given:
		return "Given"
	case When:
		return "When"
	case Then:
		return "Then"
	default:
		return "Unknown"
	}
}

type Step struct {
	Kind StepKind
	Text string
	Line int // 1-based
}

func (s Step) String() string {
	return s.Kind.String() + " " + s.Text
}

type Scenario struct {
	Name  string
	Steps []Step
	File  string
	Line  int // 1-based line number of Scenario: line
}

type Feature struct {
	Name      string
	File      string
	Line      int // 1-based line number of Feature: line
	Scenarios []Scenario
}

// Source is one named input to Parse.
type Source struct {
	Name    string
	Content string
}

type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
