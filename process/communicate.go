package process

import (
	"errors"
	"time"

	"github.com/codecrafters-io/subprocess/background_drain"
	"golang.org/x/text/encoding"
)

// Communicator is the part of a Process that Communicate drives
type Communicator interface {
	Stdin() *OutputStream
	Stdout() *InputStream
	Stderr() *InputStream

	Wait() (int, error)
	WaitTimeout(timeout time.Duration) (int, bool, error)
	Terminate() error
	Kill() error
}

type communicateOptions struct {
	input   string
	charset encoding.Encoding

	timeout time.Duration

	killTimeout    time.Duration
	hasKillTimeout bool

	err error
}

type CommunicateOption func(*communicateOptions)

// WithInput is written to the child's stdin before it is closed
func WithInput(input string) CommunicateOption {
	return func(o *communicateOptions) {
		o.input = input
	}
}

// WithCharset is used to encode the input and decode stdout and stderr. The default is UTF-8.
func WithCharset(charset encoding.Encoding) CommunicateOption {
	return func(o *communicateOptions) {
		o.charset = charset
	}
}

// WithTimeout bounds how long the child may run. Once it expires the child is
// terminated, and killed if a kill timeout is set and also expires.
func WithTimeout(timeout time.Duration) CommunicateOption {
	return func(o *communicateOptions) {
		if timeout <= 0 {
			o.err = configErrorf(nil, "timeout must be positive, got %s", timeout)
			return
		}

		o.timeout = timeout
	}
}

// WithKillTimeout is how long a terminated child gets to exit before it's killed.
// Zero skips terminating and kills the child right away.
func WithKillTimeout(killTimeout time.Duration) CommunicateOption {
	return func(o *communicateOptions) {
		if killTimeout < 0 {
			o.err = configErrorf(nil, "kill timeout can't be negative, got %s", killTimeout)
			return
		}

		o.killTimeout = killTimeout
		o.hasKillTimeout = true
	}
}

func buildCommunicateOptions(opts []CommunicateOption) (communicateOptions, error) {
	o := communicateOptions{charset: DefaultCharset}

	for _, opt := range opts {
		opt(&o)

		if o.err != nil {
			return communicateOptions{}, o.err
		}
	}

	if o.charset == nil {
		o.charset = DefaultCharset
	}

	return o, nil
}

// CheckCommunicateOptions validates opts without needing a running process
func CheckCommunicateOptions(opts ...CommunicateOption) error {
	_, err := buildCommunicateOptions(opts)
	return err
}

// CommunicateResult is the outcome of Communicate
type CommunicateResult struct {
	ExitCode int

	// Output is the child's stdout, empty unless stdout was a Pipe or Pty
	Output string

	// Errors is the child's stderr, empty unless stderr was a Pipe or Pty
	Errors string
}

func (r CommunicateResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Check returns an *ExitError if the child didn't exit with 0
func (r CommunicateResult) Check() error {
	if r.Succeeded() {
		return nil
	}

	return &ExitError{Result: r}
}

// Communicate feeds the input to the child, collects its output and waits for it to exit.
//
// Output is drained concurrently with writing the input, so a child that
// writes a lot before reading all of its input can't deadlock.
func Communicate(p Communicator, opts ...CommunicateOption) (CommunicateResult, error) {
	o, err := buildCommunicateOptions(opts)
	if err != nil {
		return CommunicateResult{}, err
	}

	var stdoutDrain, stderrDrain *background_drain.Drain

	if stdout := p.Stdout(); stdout != nil {
		stdoutDrain = background_drain.Start(stdout.Name(), stdout, o.charset)
	}

	if stderr := p.Stderr(); stderr != nil {
		stderrDrain = background_drain.Start(stderr.Name(), stderr, o.charset)
	}

	if err := writeInput(p.Stdin(), o); err != nil {
		abandon(p, stdoutDrain, stderrDrain)
		return CommunicateResult{}, err
	}

	if o.timeout > 0 {
		if err := enforceTimeout(p, o); err != nil {
			abandon(p, stdoutDrain, stderrDrain)
			return CommunicateResult{}, err
		}
	}

	exitCode, err := p.Wait()
	if err != nil {
		abandon(p, stdoutDrain, stderrDrain)
		return CommunicateResult{}, err
	}

	if err := background_drain.AwaitAll(stdoutDrain, stderrDrain); err != nil {
		return CommunicateResult{}, err
	}

	result := CommunicateResult{ExitCode: exitCode}

	if stdoutDrain != nil {
		result.Output = stdoutDrain.Result()
	}

	if stderrDrain != nil {
		result.Errors = stderrDrain.Result()
	}

	return result, nil
}

// abandon kills and reaps the child after a failure, then joins the drains so no goroutine outlives Communicate
func abandon(p Communicator, drains ...*background_drain.Drain) {
	p.Kill()
	p.Wait()
	background_drain.AwaitAll(drains...)
}

// writeInput writes the input and closes stdin. A child that stops reading
// early (broken pipe) is not an error.
func writeInput(stdin *OutputStream, o communicateOptions) error {
	if stdin == nil {
		return nil
	}

	if o.input != "" {
		if err := stdin.WriteText(o.input, o.charset); err != nil && !isBrokenPipe(err) {
			stdin.Close()
			return err
		}
	}

	if err := stdin.Close(); err != nil && !isBrokenPipe(err) {
		return err
	}

	return nil
}

func enforceTimeout(p Communicator, o communicateOptions) error {
	_, exited, err := p.WaitTimeout(o.timeout)
	if err != nil || exited {
		return err
	}

	if o.hasKillTimeout && o.killTimeout == 0 {
		return p.Kill()
	}

	if err := p.Terminate(); err != nil {
		return err
	}

	if !o.hasKillTimeout {
		return nil
	}

	_, exited, err = p.WaitTimeout(o.killTimeout)
	if err != nil || exited {
		return err
	}

	return p.Kill()
}

// Communicate is a shorthand for Communicate(p, opts...)
func (p *Process) Communicate(opts ...CommunicateOption) (CommunicateResult, error) {
	return Communicate(p, opts...)
}

// IsExitError reports whether err is (or wraps) an *ExitError
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
