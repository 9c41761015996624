//go:build unix

package process

import (
	"errors"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

type posixBackend struct{}

// PosixBackend starts children with fork/exec and reaps them with wait4,
// without any help from os/exec. Timed waits poll every PollInterval.
func PosixBackend() Backend {
	return posixBackend{}
}

func (posixBackend) Spawn(req SpawnRequest) (Child, error) {
	env := req.Env
	if env == nil {
		env = os.Environ()
	}

	stdio := []*os.File{req.Stdin, req.Stdout, req.Stderr}
	files := make([]uintptr, len(stdio))

	for i, file := range stdio {
		if file == nil {
			return nil, errors.New("posix backend needs all three standard streams")
		}

		files[i] = file.Fd()
	}

	pid, err := syscall.ForkExec(req.Path, req.Argv, &syscall.ProcAttr{
		Dir:   req.Dir,
		Env:   env,
		Files: files,
		Sys:   sysProcAttr(req.ProcessGroup),
	})

	// The descriptors must stay open until the fork has happened
	runtime.KeepAlive(stdio)

	if err != nil {
		return nil, err
	}

	return &posixChild{pid: pid, processGroup: req.ProcessGroup}, nil
}

type posixChild struct {
	pid          int
	processGroup bool

	// mu guards the reaped state. Signals are sent while holding it so a reaped
	// pid (which the OS may hand out again) is never signalled.
	mu       sync.Mutex
	reaped   bool
	exitCode int
}

func (c *posixChild) Pid() int {
	return c.pid
}

func (c *posixChild) Poll() (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reaped {
		return c.exitCode, true, nil
	}

	var status unix.WaitStatus

	for {
		pid, err := unix.Wait4(c.pid, &status, unix.WNOHANG, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}

		if err != nil {
			return 0, false, err
		}

		if pid == 0 {
			return 0, false, nil
		}

		break
	}

	c.reaped = true
	c.exitCode = waitStatusExitCode(status)

	return c.exitCode, true, nil
}

func (c *posixChild) Wait() (int, error) {
	for {
		exitCode, exited, err := c.Poll()
		if err != nil || exited {
			return exitCode, err
		}

		time.Sleep(PollInterval)
	}
}

func (c *posixChild) Terminate() error {
	return c.signal(unix.SIGTERM)
}

func (c *posixChild) Kill() error {
	return c.signal(unix.SIGKILL)
}

func (c *posixChild) signal(sig unix.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reaped {
		return nil
	}

	target := c.pid
	if c.processGroup {
		target = -c.pid
	}

	if err := unix.Kill(target, sig); err != nil && !isAlreadyDead(err) {
		return err
	}

	return nil
}
