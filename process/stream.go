package process

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultCharset is used to decode and encode text when no charset is given
var DefaultCharset encoding.Encoding = unicode.UTF8

// InputStream is the parent's read end of one of the child's output streams
type InputStream struct {
	name     string
	file     *os.File
	terminal bool
	onClose  func()

	eof       atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newInputStream(name string, file *os.File, terminal bool, onClose func()) *InputStream {
	return &InputStream{name: name, file: file, terminal: terminal, onClose: onClose}
}

func (s *InputStream) Name() string {
	return s.name
}

// Read reads from the stream. Once io.EOF has been returned, every later call returns io.EOF again.
func (s *InputStream) Read(p []byte) (int, error) {
	if s.eof.Load() {
		return 0, io.EOF
	}

	n, err := s.file.Read(p)
	if err == nil {
		return n, nil
	}

	// Reading a pty master fails with EIO once the child side is closed
	// (The Linux Programming Interface, Appendix F - 64.1)
	if errors.Is(err, io.EOF) || (s.terminal && errors.Is(err, syscall.EIO)) {
		s.eof.Store(true)
		return n, io.EOF
	}

	return n, &StreamError{Stream: s.name, Op: "read", Err: err}
}

// ReadAll reads until EOF
func (s *InputStream) ReadAll() ([]byte, error) {
	return io.ReadAll(s)
}

// ReadText reads until EOF and decodes the bytes using enc. A nil enc means DefaultCharset.
func (s *InputStream) ReadText(enc encoding.Encoding) (string, error) {
	if enc == nil {
		enc = DefaultCharset
	}

	data, err := io.ReadAll(transform.NewReader(s, enc.NewDecoder()))
	return string(data), err
}

// Close closes the stream. Calling it more than once is harmless.
func (s *InputStream) Close() error {
	s.closeOnce.Do(func() {
		if err := closeIfOpen(s.file); err != nil {
			s.closeErr = &StreamError{Stream: s.name, Op: "close", Err: err}
		}

		if s.onClose != nil {
			s.onClose()
		}
	})

	return s.closeErr
}

// OutputStream is the parent's write end of the child's stdin
type OutputStream struct {
	name     string
	file     *os.File
	terminal bool
	onClose  func()

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newOutputStream(name string, file *os.File, terminal bool, onClose func()) *OutputStream {
	return &OutputStream{name: name, file: file, terminal: terminal, onClose: onClose}
}

func (s *OutputStream) Name() string {
	return s.name
}

func (s *OutputStream) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, &StreamError{Stream: s.name, Op: "write", Err: os.ErrClosed}
	}

	n, err := s.file.Write(p)
	if err != nil {
		return n, &StreamError{Stream: s.name, Op: "write", Err: err}
	}

	return n, nil
}

// WriteText encodes text using enc and writes it. A nil enc means DefaultCharset.
func (s *OutputStream) WriteText(text string, enc encoding.Encoding) error {
	if enc == nil {
		enc = DefaultCharset
	}

	encoded, err := enc.NewEncoder().String(text)
	if err != nil {
		return &StreamError{Stream: s.name, Op: "encode", Err: err}
	}

	_, err = io.WriteString(s, encoded)
	return err
}

// Close signals end of input to the child. Calling it more than once is harmless.
//
// For a pty the master stays open until the process is released, since
// closing it would hang up the terminal. The child sees EOF through the
// terminal's EOF character instead.
func (s *OutputStream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		if s.terminal {
			// A second ^D is needed when the input didn't end with a newline
			if _, err := s.file.Write([]byte{0x04, 0x04}); err != nil {
				s.closeErr = &StreamError{Stream: s.name, Op: "close", Err: err}
			}
		} else if err := closeIfOpen(s.file); err != nil {
			s.closeErr = &StreamError{Stream: s.name, Op: "close", Err: err}
		}

		if s.onClose != nil {
			s.onClose()
		}
	})

	return s.closeErr
}

// closeFile closes the underlying file even when Close kept it open
func (s *OutputStream) closeFile() error {
	return closeIfOpen(s.file)
}
