package process

import (
	"maps"

	"github.com/codecrafters-io/subprocess/environment"
)

// Arguments is the immutable description of a child process to launch.
// Build one with NewArguments.
type Arguments struct {
	argv             []string
	workingDirectory string

	environment    map[string]string
	hasEnvironment bool

	stdin  Redirect
	stdout Redirect
	stderr Redirect

	processGroup     bool
	memoryLimitBytes int64
}

type ArgumentsOption func(*Arguments) error

// WithWorkingDirectory sets the child's working directory. Relative paths are
// resolved against the parent's working directory. Empty means inherit.
func WithWorkingDirectory(dir string) ArgumentsOption {
	return func(a *Arguments) error {
		a.workingDirectory = dir
		return nil
	}
}

// WithEnvironment replaces the child's environment with exactly vars.
// Without this option the child inherits the parent's environment.
func WithEnvironment(vars map[string]string) ArgumentsOption {
	return func(a *Arguments) error {
		for key, value := range vars {
			if err := environment.ValidateKey(key); err != nil {
				return configErrorf(err, "invalid environment")
			}

			if err := environment.ValidateValue(value); err != nil {
				return configErrorf(err, "invalid environment")
			}
		}

		a.environment = maps.Clone(vars)
		if a.environment == nil {
			a.environment = map[string]string{}
		}
		a.hasEnvironment = true

		return nil
	}
}

// WithEnvironmentBuilder replaces the child's environment with a snapshot of b
func WithEnvironmentBuilder(b *environment.Builder) ArgumentsOption {
	return func(a *Arguments) error {
		if b == nil {
			return configErrorf(nil, "environment builder is nil")
		}

		a.environment = b.Map()
		a.hasEnvironment = true
		return nil
	}
}

func WithStdin(r Redirect) ArgumentsOption {
	return func(a *Arguments) error {
		if err := validateRedirect("stdin", r); err != nil {
			return err
		}

		a.stdin = r
		return nil
	}
}

func WithStdout(r Redirect) ArgumentsOption {
	return func(a *Arguments) error {
		if err := validateRedirect("stdout", r); err != nil {
			return err
		}

		a.stdout = r
		return nil
	}
}

func WithStderr(r Redirect) ArgumentsOption {
	return func(a *Arguments) error {
		if err := validateRedirect("stderr", r); err != nil {
			return err
		}

		a.stderr = r
		return nil
	}
}

// WithProcessGroup starts the child as the leader of a new process group.
// Terminate and Kill then signal the whole group.
func WithProcessGroup(enabled bool) ArgumentsOption {
	return func(a *Arguments) error {
		a.processGroup = enabled
		return nil
	}
}

// WithMemoryLimit caps the child's memory usage. Only enforced on Linux with cgroup v2; 0 disables the limit.
func WithMemoryLimit(bytes int64) ArgumentsOption {
	return func(a *Arguments) error {
		if bytes < 0 {
			return configErrorf(nil, "memory limit can't be negative: %d", bytes)
		}

		a.memoryLimitBytes = bytes
		return nil
	}
}

// NewArguments builds launch arguments for argv. argv[0] names the program and
// must be present. All streams default to Pipe.
func NewArguments(argv []string, opts ...ArgumentsOption) (Arguments, error) {
	if len(argv) == 0 {
		return Arguments{}, configErrorf(nil, "argv must contain at least the program to run")
	}

	if argv[0] == "" {
		return Arguments{}, configErrorf(nil, "program name is empty")
	}

	a := Arguments{
		argv:   append([]string(nil), argv...),
		stdin:  Pipe,
		stdout: Pipe,
		stderr: Pipe,
	}

	for _, opt := range opts {
		if err := opt(&a); err != nil {
			return Arguments{}, err
		}
	}

	return a, nil
}

// Argv returns a copy of the full argument vector, program first
func (a Arguments) Argv() []string {
	return append([]string(nil), a.argv...)
}

func (a Arguments) Program() string {
	return a.argv[0]
}

func (a Arguments) WorkingDirectory() string {
	return a.workingDirectory
}

// Environment returns a copy of the replacement environment. ok is false when
// the child inherits the parent's environment.
func (a Arguments) Environment() (vars map[string]string, ok bool) {
	if !a.hasEnvironment {
		return nil, false
	}

	return maps.Clone(a.environment), true
}

func (a Arguments) Stdin() Redirect  { return a.stdin }
func (a Arguments) Stdout() Redirect { return a.stdout }
func (a Arguments) Stderr() Redirect { return a.stderr }

func (a Arguments) ProcessGroup() bool {
	return a.processGroup
}

func (a Arguments) MemoryLimitBytes() int64 {
	return a.memoryLimitBytes
}
