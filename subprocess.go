package subprocess

import (
	"time"

	"github.com/codecrafters-io/subprocess/logger"
	"github.com/codecrafters-io/subprocess/process"
	"golang.org/x/text/encoding"
)

type execOptions struct {
	communicateOptions []process.CommunicateOption
	startOptions       []process.StartOption
	check              bool
}

// Option configures Exec
type Option func(*execOptions)

// WithInput is written to the child's stdin, which is then closed
func WithInput(input string) Option {
	return func(o *execOptions) {
		o.communicateOptions = append(o.communicateOptions, process.WithInput(input))
	}
}

// WithCharset is used for the input and the collected output. The default is UTF-8.
func WithCharset(charset encoding.Encoding) Option {
	return func(o *execOptions) {
		o.communicateOptions = append(o.communicateOptions, process.WithCharset(charset))
	}
}

// WithTimeout terminates the child if it's still running after timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *execOptions) {
		o.communicateOptions = append(o.communicateOptions, process.WithTimeout(timeout))
	}
}

// WithKillTimeout kills a terminated child that hasn't exited after killTimeout. Zero kills without terminating first.
func WithKillTimeout(killTimeout time.Duration) Option {
	return func(o *execOptions) {
		o.communicateOptions = append(o.communicateOptions, process.WithKillTimeout(killTimeout))
	}
}

// WithCheck makes Exec return a *process.ExitError if the child exits with a non-zero code
func WithCheck() Option {
	return func(o *execOptions) {
		o.check = true
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *execOptions) {
		o.startOptions = append(o.startOptions, process.WithLogger(l))
	}
}

func WithBackend(b process.Backend) Option {
	return func(o *execOptions) {
		o.startOptions = append(o.startOptions, process.WithBackend(b))
	}
}

// Exec runs the child described by args to completion and returns what it wrote.
//
// Invalid options are reported before the child is started. With WithCheck the
// result is also returned alongside the *process.ExitError.
func Exec(args process.Arguments, opts ...Option) (process.CommunicateResult, error) {
	o := execOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := process.CheckCommunicateOptions(o.communicateOptions...); err != nil {
		return process.CommunicateResult{}, err
	}

	p, err := process.Start(args, o.startOptions...)
	if err != nil {
		return process.CommunicateResult{}, err
	}

	defer p.Close()

	result, err := p.Communicate(o.communicateOptions...)
	if err != nil {
		return result, err
	}

	if o.check {
		return result, result.Check()
	}

	return result, nil
}

// Run is a shorthand for Exec with default arguments built from argv
func Run(argv []string, opts ...Option) (process.CommunicateResult, error) {
	args, err := process.NewArguments(argv)
	if err != nil {
		return process.CommunicateResult{}, err
	}

	return Exec(args, opts...)
}
