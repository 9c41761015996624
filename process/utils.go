package process

import (
	"errors"
	"io"
	"os"
)

// closeIfOpen closes c, treating an already closed file as success
func closeIfOpen(c io.Closer) error {
	err := c.Close()

	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}

	return nil
}

// closeAll makes a best effort to close every file (continuing past failures)
// and returns the first error. nil entries are skipped.
func closeAll(files ...*os.File) error {
	var firstError error

	for _, file := range files {
		if file == nil {
			continue
		}

		if err := closeIfOpen(file); err != nil && firstError == nil {
			firstError = err
		}
	}

	return firstError
}
