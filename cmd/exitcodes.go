package cmd

// Exit codes for the command line
const (
	// ExitSuccess indicates every scenario passed
	ExitSuccess = 0

	// ExitTestFailure indicates a failing scenario or no features at all
	ExitTestFailure = 1

	// ExitParseError indicates a feature file could not be parsed
	ExitParseError = 2

	// ExitConfigError indicates bad configuration or invalid step definitions
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
