//go:build unix

package process

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func sysProcAttr(processGroup bool) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: processGroup}
}

func terminateProcess(p *os.Process, processGroup bool) error {
	return signalProcess(p, processGroup, unix.SIGTERM)
}

func killProcess(p *os.Process, processGroup bool) error {
	return signalProcess(p, processGroup, unix.SIGKILL)
}

func signalProcess(p *os.Process, processGroup bool, sig unix.Signal) error {
	var err error

	if processGroup {
		// The child leads its own group, so -pid addresses the whole group
		err = unix.Kill(-p.Pid, sig)
	} else {
		err = p.Signal(sig)
	}

	if isAlreadyDead(err) {
		return nil
	}

	return err
}

func isAlreadyDead(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, unix.ESRCH)
}

// exitStatus maps a finished process to its exit code. A child killed by signal N reports 128+N.
func exitStatus(state *os.ProcessState) int {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return state.ExitCode()
	}

	return waitStatusExitCode(unix.WaitStatus(status))
}

func waitStatusExitCode(status unix.WaitStatus) int {
	if status.Signaled() {
		return 128 + int(status.Signal())
	}

	return status.ExitStatus()
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, unix.EPIPE)
}
