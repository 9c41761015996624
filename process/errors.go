package process

import (
	"fmt"
	"strings"
)

// ConfigError reports an invalid launch or communicate configuration.
// It is only ever returned before a child process has been started.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(err error, format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ProcessError reports an OS failure while spawning, waiting on or signalling a child
type ProcessError struct {
	Message string
	Err     error
}

func (e *ProcessError) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func processErrorf(err error, format string, args ...any) *ProcessError {
	return &ProcessError{Message: fmt.Sprintf(format, args...), Err: err}
}

// StreamError reports a failed read, write or close on one of the child's standard streams
type StreamError struct {
	Stream string
	Op     string
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Stream, e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// ExitError is returned by CommunicateResult.Check when the child exited with a non-zero code
type ExitError struct {
	Result CommunicateResult
}

func (e *ExitError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "process exited with exit code %d", e.Result.ExitCode)

	if strings.TrimSpace(e.Result.Errors) == "" {
		return sb.String()
	}

	sb.WriteString(": ")

	lines := splitLines(e.Result.Errors)

	var nonBlank []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonBlank = append(nonBlank, line)
		}
	}

	if len(nonBlank) == 1 {
		sb.WriteString(nonBlank[0])
		return sb.String()
	}

	// Blank lines in between are kept, the dump mirrors stderr
	for _, line := range lines {
		sb.WriteString("\n    ")
		sb.WriteString(line)
	}

	return sb.String()
}

// splitLines splits s on any line ending, dropping the trailing ones
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")

	return strings.Split(s, "\n")
}
