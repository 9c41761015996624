package batch_runner

import (
	"time"

	"github.com/codecrafters-io/subprocess"
	"github.com/codecrafters-io/subprocess/logger"
	"github.com/codecrafters-io/subprocess/process"
)

// Step is one command run by a BatchRunner
type Step struct {
	// Name is used as the log prefix for the step. Example: "build"
	Name string

	Arguments process.Arguments

	// Input is written to the step's stdin
	Input string

	// Timeout is zero for no timeout
	Timeout time.Duration

	// KillTimeout is nil to only terminate timed out steps
	KillTimeout *time.Duration

	// Check fails the step if it exits with a non-zero code
	Check bool
}

func (s Step) execOptions(l *logger.Logger) []subprocess.Option {
	opts := []subprocess.Option{
		subprocess.WithInput(s.Input),
		subprocess.WithLogger(l),
	}

	if s.Timeout > 0 {
		opts = append(opts, subprocess.WithTimeout(s.Timeout))
	}

	if s.KillTimeout != nil {
		opts = append(opts, subprocess.WithKillTimeout(*s.KillTimeout))
	}

	if s.Check {
		opts = append(opts, subprocess.WithCheck())
	}

	return opts
}
