//go:build windows

package process

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// Children always get their own console process group so CTRL_BREAK_EVENT
// can be delivered to them without reaching the parent.
func sysProcAttr(processGroup bool) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

func terminateProcess(p *os.Process, processGroup bool) error {
	err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(p.Pid))
	if isAlreadyDead(err) {
		return nil
	}

	return err
}

func killProcess(p *os.Process, processGroup bool) error {
	err := p.Kill()
	if isAlreadyDead(err) {
		return nil
	}

	return err
}

func isAlreadyDead(err error) bool {
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, windows.ERROR_INVALID_PARAMETER)
}

func exitStatus(state *os.ProcessState) int {
	return state.ExitCode()
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) || errors.Is(err, windows.ERROR_NO_DATA)
}
