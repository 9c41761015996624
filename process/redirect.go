package process

import (
	"fmt"
	"strings"
)

type redirectKind int

const (
	redirectPipe redirectKind = iota
	redirectNull
	redirectInherit
	redirectStdout
	redirectRead
	redirectWrite
	redirectPty
)

// Redirect describes what one of the child's standard streams is connected to.
// The zero value is Pipe.
type Redirect struct {
	kind   redirectKind
	path   string
	append bool
}

var (
	// Pipe connects the stream to a pipe the parent can read or write through the Process handle
	Pipe = Redirect{kind: redirectPipe}

	// Null connects the stream to the null device
	Null = Redirect{kind: redirectNull}

	// Inherit shares the parent's corresponding stream
	Inherit = Redirect{kind: redirectInherit}

	// Stdout sends stderr to wherever stdout goes. Only valid for stderr.
	Stdout = Redirect{kind: redirectStdout}

	// Pty connects the stream to a pseudo-terminal. The parent keeps the master end.
	Pty = Redirect{kind: redirectPty}
)

// Read connects stdin to the file at path
func Read(path string) Redirect {
	return Redirect{kind: redirectRead, path: path}
}

// Write connects stdout or stderr to the file at path, truncating it unless append is set
func Write(path string, append bool) Redirect {
	return Redirect{kind: redirectWrite, path: path, append: append}
}

// Path returns the file path of a Read or Write redirect
func (r Redirect) Path() string {
	return r.path
}

func (r Redirect) String() string {
	switch r.kind {
	case redirectPipe:
		return "pipe"
	case redirectNull:
		return "discard"
	case redirectInherit:
		return "inherit"
	case redirectStdout:
		return "stdout"
	case redirectRead:
		return fmt.Sprintf("read from %s", r.path)
	case redirectWrite:
		if r.append {
			return fmt.Sprintf("append to %s", r.path)
		}

		return fmt.Sprintf("write to %s", r.path)
	case redirectPty:
		return "pty"
	default:
		return "unknown"
	}
}

// ParseRedirect parses the textual form used in configuration files:
// pipe, null, inherit, stdout, pty, read:PATH, write:PATH or append:PATH.
// An empty string is Pipe.
func ParseRedirect(s string) (Redirect, error) {
	switch s {
	case "", "pipe":
		return Pipe, nil
	case "null", "discard":
		return Null, nil
	case "inherit":
		return Inherit, nil
	case "stdout":
		return Stdout, nil
	case "pty":
		return Pty, nil
	}

	kind, path, found := strings.Cut(s, ":")
	if !found || path == "" {
		return Redirect{}, configErrorf(nil, "unknown redirect %q", s)
	}

	switch kind {
	case "read":
		return Read(path), nil
	case "write":
		return Write(path, false), nil
	case "append":
		return Write(path, true), nil
	default:
		return Redirect{}, configErrorf(nil, "unknown redirect %q", s)
	}
}

func validateRedirect(role string, r Redirect) error {
	if (r.kind == redirectRead || r.kind == redirectWrite) && r.path == "" {
		return configErrorf(nil, "%s redirect %q needs a file path", role, r)
	}

	switch role {
	case "stdin":
		if r.kind == redirectWrite || r.kind == redirectStdout {
			return configErrorf(nil, "stdin can't be redirected to %q", r)
		}
	case "stdout":
		if r.kind == redirectRead || r.kind == redirectStdout {
			return configErrorf(nil, "stdout can't be redirected to %q", r)
		}
	case "stderr":
		if r.kind == redirectRead {
			return configErrorf(nil, "stderr can't be redirected to %q", r)
		}
	}

	return nil
}
