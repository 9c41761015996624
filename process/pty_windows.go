//go:build windows

package process

import (
	"errors"
	"os"
)

func openPty() (master, slave *os.File, err error) {
	return nil, nil, errors.New("pseudo-terminals are not supported on windows")
}
