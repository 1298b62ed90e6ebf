// Package steps holds step definitions and resolves steps against them.
//
// A Registry is filled during a setup phase with Given, When and Then
// handlers and with Before and After hooks, then handed to a runner which
// only reads it. Patterns are compiled case-insensitively at registration
// time; a pattern that does not compile is reported immediately and kept in
// Registry.Err so a run can refuse to start.
//
// Resolution is a pure function of the step text and the registry contents:
//   - no handler of the step's kind matches: Unmatched
//   - exactly one matches: Matched, with its capture groups
//   - more than one matches: Ambiguous, with every matching handler
//
// Patterns match anywhere in the text unless anchored. Registration order
// never breaks ties; it is only used when listing handlers.
package steps
