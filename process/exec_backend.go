package process

import (
	"os/exec"
	"time"
)

type execBackend struct{}

// ExecBackend starts children with os/exec. It's available on every platform.
func ExecBackend() Backend {
	return execBackend{}
}

func (execBackend) Spawn(req SpawnRequest) (Child, error) {
	cmd := &exec.Cmd{
		Path:        req.Path,
		Args:        req.Argv,
		Dir:         req.Dir,
		Env:         req.Env,
		SysProcAttr: sysProcAttr(req.ProcessGroup),
	}

	// A nil *os.File must not end up in the io.Reader / io.Writer fields
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin
	}

	if req.Stdout != nil {
		cmd.Stdout = req.Stdout
	}

	if req.Stderr != nil {
		cmd.Stderr = req.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	child := &execChild{
		cmd:          cmd,
		processGroup: req.ProcessGroup,
		done:         make(chan struct{}),
	}

	go child.reap()

	return child, nil
}

type execChild struct {
	cmd          *exec.Cmd
	processGroup bool

	// done is closed once exitCode and waitErr are set
	done     chan struct{}
	exitCode int
	waitErr  error
}

func (c *execChild) reap() {
	defer close(c.done)

	// Every stream is an *os.File, so there are no copying goroutines for Wait to join
	err := c.cmd.Wait()

	if c.cmd.ProcessState == nil {
		c.waitErr = err
		return
	}

	c.exitCode = exitStatus(c.cmd.ProcessState)
}

func (c *execChild) Pid() int {
	return c.cmd.Process.Pid
}

func (c *execChild) Poll() (int, bool, error) {
	select {
	case <-c.done:
		return c.exitCode, true, c.waitErr
	default:
		return 0, false, nil
	}
}

func (c *execChild) Wait() (int, error) {
	<-c.done
	return c.exitCode, c.waitErr
}

func (c *execChild) WaitTimeout(timeout time.Duration) (int, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		return c.exitCode, true, c.waitErr
	case <-timer.C:
		return 0, false, nil
	}
}

func (c *execChild) hasExited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *execChild) Terminate() error {
	if c.hasExited() {
		return nil
	}

	return terminateProcess(c.cmd.Process, c.processGroup)
}

func (c *execChild) Kill() error {
	if c.hasExited() {
		return nil
	}

	return killProcess(c.cmd.Process, c.processGroup)
}
