package process

import (
	"os"
	"time"
)

// SpawnRequest is everything a Backend needs to start a child
type SpawnRequest struct {
	// Path is the resolved, absolute path of the program
	Path string

	// Argv is passed to the child verbatim, Argv[0] included
	Argv []string

	// Dir is the working directory, empty to inherit the parent's
	Dir string

	// Env is the full environment as "KEY=VALUE" entries. nil inherits the parent's environment.
	Env []string

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// ProcessGroup starts the child in a new process group and makes signals target the whole group
	ProcessGroup bool
}

// Backend starts child processes
type Backend interface {
	Spawn(req SpawnRequest) (Child, error)
}

// Child is a running (or finished) child process as seen by a Backend.
//
// Exit codes follow a single convention across backends: the exit status for a
// normal exit, 128+N for a child killed by signal N.
type Child interface {
	Pid() int

	// Poll checks whether the child has exited without blocking
	Poll() (exitCode int, exited bool, err error)

	// Wait blocks until the child exits
	Wait() (exitCode int, err error)

	// Terminate asks the child to exit. It's a no-op once the child has exited.
	Terminate() error

	// Kill forcibly stops the child. It's a no-op once the child has exited.
	Kill() error
}

// timedWaiter is implemented by children that can wait with a timeout without polling
type timedWaiter interface {
	WaitTimeout(timeout time.Duration) (exitCode int, exited bool, err error)
}

// DefaultBackend returns the backend used when Start isn't given one
func DefaultBackend() Backend {
	return ExecBackend()
}
