package process

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/codecrafters-io/subprocess/environment"
	"github.com/codecrafters-io/subprocess/logger"
)

// PollInterval is how long timed waits sleep between polls on backends that
// can't wait with a timeout natively. Lower values react faster and cost more CPU.
var PollInterval = 10 * time.Millisecond

type startOptions struct {
	backend Backend
	logger  *logger.Logger
}

type StartOption func(*startOptions)

// WithBackend selects the backend used to spawn the child
func WithBackend(b Backend) StartOption {
	return func(o *startOptions) {
		o.backend = b
	}
}

func WithLogger(l *logger.Logger) StartOption {
	return func(o *startOptions) {
		o.logger = l
	}
}

// Process is a spawned child process
type Process struct {
	args   Arguments
	child  Child
	logger *logger.Logger

	stdin  *OutputStream
	stdout *InputStream
	stderr *InputStream

	cgroup *cgroupManager

	mu            sync.Mutex
	exitCode      int
	exited        bool
	openEndpoints int
	oomKilled     bool
	releaseOnce   sync.Once
}

// Start spawns the child described by args.
//
// Configuration problems (unknown program, missing working directory,
// unopenable redirect files) are reported as *ConfigError before anything is
// spawned. OS failures while spawning are reported as *ProcessError.
func Start(args Arguments, opts ...StartOption) (*Process, error) {
	o := startOptions{
		backend: DefaultBackend(),
		logger:  logger.Discard(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if len(args.argv) == 0 {
		return nil, configErrorf(nil, "arguments were not built with NewArguments")
	}

	executablePath, err := resolveExecutable(args.Program())
	if err != nil {
		return nil, err
	}

	if err := checkWorkingDirectory(args.WorkingDirectory()); err != nil {
		return nil, err
	}

	var env []string
	if vars, ok := args.Environment(); ok {
		env = environment.FormatEnviron(vars)
	}

	streams, err := resolveStreams(args)
	if err != nil {
		return nil, err
	}

	child, err := o.backend.Spawn(SpawnRequest{
		Path:         executablePath,
		Argv:         args.Argv(),
		Dir:          args.WorkingDirectory(),
		Env:          env,
		Stdin:        streams.stdin.child,
		Stdout:       streams.stdout.child,
		Stderr:       streams.stderr.child,
		ProcessGroup: args.ProcessGroup(),
	})

	// The child has its own copies of these by now
	streams.closeChildEnds()

	if err != nil {
		streams.closeParentEnds()
		return nil, processErrorf(err, "failed to start %s", executablePath)
	}

	p := newProcess(args, child, streams, o.logger)
	p.logger.Debugf("Started %s (pid %d)", strings.Join(args.argv, " "), child.Pid())

	if limit := args.MemoryLimitBytes(); limit > 0 {
		cgroup, err := newCgroupManager(limit, child.Pid())
		if err != nil {
			p.Kill()
			p.Wait()
			p.Close()
			return nil, processErrorf(err, "failed to apply memory limit to %s", executablePath)
		}

		p.cgroup = cgroup
	}

	return p, nil
}

func newProcess(args Arguments, child Child, streams *resolvedStreams, l *logger.Logger) *Process {
	p := &Process{
		args:   args,
		child:  child,
		logger: l,
	}

	if streams.stdin.parent != nil {
		p.openEndpoints++
		p.stdin = newOutputStream("stdin", streams.stdin.parent, streams.stdin.terminal, p.endpointClosed)
	}

	if streams.stdout.parent != nil {
		p.openEndpoints++
		p.stdout = newInputStream("stdout", streams.stdout.parent, streams.stdout.terminal, p.endpointClosed)
	}

	if streams.stderr.parent != nil {
		p.openEndpoints++
		p.stderr = newInputStream("stderr", streams.stderr.parent, streams.stderr.terminal, p.endpointClosed)
	}

	return p
}

// resolveExecutable finds the program to run:
//  1. A name without a path separator is searched for in PATH
//  2. Anything else is resolved against the current working directory
//
// The result must be an existing, executable, regular file.
func resolveExecutable(program string) (string, error) {
	var absolutePath string
	var err error

	if strings.ContainsRune(program, '/') || strings.ContainsRune(program, filepath.Separator) {
		absolutePath, err = filepath.Abs(program)
	} else {
		absolutePath, err = exec.LookPath(program)
	}

	if err != nil {
		return "", configErrorf(err, "%s not found", program)
	}

	fileInfo, err := os.Stat(absolutePath)
	if err != nil {
		return "", configErrorf(err, "%s not found", program)
	}

	if fileInfo.IsDir() || (runtime.GOOS != "windows" && fileInfo.Mode().Perm()&0111 == 0) {
		return "", configErrorf(nil, "%s (resolved to %s) is not an executable file", program, absolutePath)
	}

	return absolutePath, nil
}

func checkWorkingDirectory(dir string) error {
	if dir == "" {
		return nil
	}

	fileInfo, err := os.Stat(dir)
	if err != nil {
		return configErrorf(err, "working directory %s is not accessible", dir)
	}

	if !fileInfo.IsDir() {
		return configErrorf(nil, "working directory %s is not a directory", dir)
	}

	return nil
}

func (p *Process) Pid() int {
	return p.child.Pid()
}

func (p *Process) Arguments() Arguments {
	return p.args
}

// Stdin returns the write end of the child's stdin, or nil if stdin isn't a Pipe or Pty
func (p *Process) Stdin() *OutputStream {
	return p.stdin
}

// Stdout returns the read end of the child's stdout, or nil if stdout isn't a Pipe or Pty
func (p *Process) Stdout() *InputStream {
	return p.stdout
}

// Stderr returns the read end of the child's stderr, or nil if stderr isn't a Pipe or Pty
func (p *Process) Stderr() *InputStream {
	return p.stderr
}

func (p *Process) cachedExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitCode, p.exited
}

// markExited records the exit code. Only the first call has any effect.
func (p *Process) markExited(exitCode int) int {
	p.mu.Lock()

	if !p.exited {
		p.exited = true
		p.exitCode = exitCode
	}

	exitCode = p.exitCode
	shouldRelease := p.openEndpoints == 0

	p.mu.Unlock()

	if shouldRelease {
		p.release()
	}

	return exitCode
}

func (p *Process) endpointClosed() {
	p.mu.Lock()

	p.openEndpoints--
	shouldRelease := p.exited && p.openEndpoints == 0

	p.mu.Unlock()

	if shouldRelease {
		p.release()
	}
}

// release frees what the process holds on to once it has exited and every endpoint is closed
func (p *Process) release() {
	p.releaseOnce.Do(func() {
		if p.stdin != nil && p.stdin.terminal {
			p.stdin.closeFile()
		}

		if p.cgroup == nil {
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		p.oomKilled = p.cgroup.wasOOMKilled()
		if err := p.cgroup.cleanup(); err != nil {
			p.logger.Errorf("Failed to remove cgroup of pid %d: %s", p.Pid(), err)
		}
	})
}

// ExitCode polls the child without blocking. exited is false while it's still running.
func (p *Process) ExitCode() (exitCode int, exited bool, err error) {
	if exitCode, exited := p.cachedExitCode(); exited {
		return exitCode, true, nil
	}

	exitCode, exited, err = p.child.Poll()
	if err != nil {
		return 0, false, processErrorf(err, "failed to poll process %d", p.Pid())
	}

	if !exited {
		return 0, false, nil
	}

	return p.markExited(exitCode), true, nil
}

// IsAlive polls the child without blocking
func (p *Process) IsAlive() (bool, error) {
	_, exited, err := p.ExitCode()
	return !exited, err
}

// Wait blocks until the child exits and returns its exit code. Calling it again returns the same code.
func (p *Process) Wait() (int, error) {
	if exitCode, exited := p.cachedExitCode(); exited {
		return exitCode, nil
	}

	exitCode, err := p.child.Wait()
	if err != nil {
		return 0, processErrorf(err, "failed to wait for process %d", p.Pid())
	}

	return p.markExited(exitCode), nil
}

// WaitTimeout waits up to timeout for the child to exit. exited is false if it
// was still running when the timeout expired, which is not an error.
func (p *Process) WaitTimeout(timeout time.Duration) (exitCode int, exited bool, err error) {
	if timeout <= 0 {
		return 0, false, configErrorf(nil, "wait timeout must be positive, got %s", timeout)
	}

	if exitCode, exited := p.cachedExitCode(); exited {
		return exitCode, true, nil
	}

	if waiter, ok := p.child.(timedWaiter); ok {
		exitCode, exited, err = waiter.WaitTimeout(timeout)
	} else {
		exitCode, exited, err = p.pollUntil(time.Now().Add(timeout))
	}

	if err != nil {
		return 0, false, processErrorf(err, "failed to wait for process %d", p.Pid())
	}

	if !exited {
		return 0, false, nil
	}

	return p.markExited(exitCode), true, nil
}

func (p *Process) pollUntil(deadline time.Time) (int, bool, error) {
	for {
		exitCode, exited, err := p.child.Poll()
		if err != nil || exited {
			return exitCode, exited, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, false, nil
		}

		time.Sleep(min(PollInterval, remaining))
	}
}

// Terminate asks the child to exit (SIGTERM, or CTRL_BREAK on Windows) without waiting for it
func (p *Process) Terminate() error {
	if _, exited := p.cachedExitCode(); exited {
		return nil
	}

	p.logger.Debugf("Terminating pid %d", p.Pid())

	if err := p.child.Terminate(); err != nil {
		return processErrorf(err, "failed to terminate process %d", p.Pid())
	}

	return nil
}

// Kill forcibly stops the child without waiting for it
func (p *Process) Kill() error {
	if _, exited := p.cachedExitCode(); exited {
		return nil
	}

	p.logger.Debugf("Killing pid %d", p.Pid())

	if err := p.child.Kill(); err != nil {
		return processErrorf(err, "failed to kill process %d", p.Pid())
	}

	return nil
}

// Close closes every stream endpoint the parent holds. It doesn't stop the child.
func (p *Process) Close() error {
	var firstError error

	if p.stdin != nil {
		firstError = p.stdin.Close()
	}

	for _, stream := range []*InputStream{p.stdout, p.stderr} {
		if stream == nil {
			continue
		}

		if err := stream.Close(); err != nil && firstError == nil {
			firstError = err
		}
	}

	return firstError
}

// OOMKilled reports whether the child was killed for exceeding its memory limit.
// It's always false when no limit was set.
func (p *Process) OOMKilled() bool {
	if p.cgroup == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.oomKilled {
		return true
	}

	return p.cgroup.wasOOMKilled()
}
