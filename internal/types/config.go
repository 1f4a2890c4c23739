package types

type RunMode string

const (
	// ModeLocal resolves templates and the package cache relative to the working directory
	ModeLocal RunMode = "local"
	// ModeCLI is the mode for one-shot command line invocations
	ModeCLI RunMode = "cli"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
