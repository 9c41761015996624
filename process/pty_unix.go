//go:build unix

package process

import (
	"os"

	"github.com/creack/pty"
)

// openPty returns the master and slave ends of a new pseudo-terminal
func openPty() (master, slave *os.File, err error) {
	return pty.Open()
}
