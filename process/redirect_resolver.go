package process

import (
	"os"
)

// resolvedStream holds the files backing one standard stream of a child about to be spawned
type resolvedStream struct {
	// child is handed to the child process. It is nil only if resolution failed.
	child *os.File

	// childOwned is false for files we must not close: inherited stdio and aliases
	childOwned bool

	// parent is the end the parent retains, nil unless the redirect is Pipe or Pty
	parent *os.File

	terminal bool
}

type resolvedStreams struct {
	stdin, stdout, stderr resolvedStream
}

// resolveStreams opens every file needed for args' redirects.
// If any of them fails, everything opened so far is closed before the error is returned.
func resolveStreams(args Arguments) (streams *resolvedStreams, err error) {
	streams = &resolvedStreams{}

	defer func() {
		if err != nil {
			streams.closeAll()
			streams = nil
		}
	}()

	if streams.stdin, err = resolveStream("stdin", args.Stdin(), os.Stdin, true); err != nil {
		return streams, err
	}

	if streams.stdout, err = resolveStream("stdout", args.Stdout(), os.Stdout, false); err != nil {
		return streams, err
	}

	if args.Stderr().kind == redirectStdout {
		streams.stderr = resolvedStream{child: streams.stdout.child}
		return streams, nil
	}

	if streams.stderr, err = resolveStream("stderr", args.Stderr(), os.Stderr, false); err != nil {
		return streams, err
	}

	return streams, nil
}

func resolveStream(role string, r Redirect, inherited *os.File, isInput bool) (resolvedStream, error) {
	switch r.kind {
	case redirectPipe:
		readEnd, writeEnd, err := os.Pipe()
		if err != nil {
			return resolvedStream{}, processErrorf(err, "failed to create %s pipe", role)
		}

		if isInput {
			return resolvedStream{child: readEnd, childOwned: true, parent: writeEnd}, nil
		}

		return resolvedStream{child: writeEnd, childOwned: true, parent: readEnd}, nil

	case redirectNull:
		flag := os.O_WRONLY
		if isInput {
			flag = os.O_RDONLY
		}

		file, err := os.OpenFile(os.DevNull, flag, 0)
		if err != nil {
			return resolvedStream{}, processErrorf(err, "failed to open %s for %s", os.DevNull, role)
		}

		return resolvedStream{child: file, childOwned: true}, nil

	case redirectInherit:
		return resolvedStream{child: inherited}, nil

	case redirectRead:
		file, err := os.Open(r.path)
		if err != nil {
			return resolvedStream{}, configErrorf(err, "can't open %s for reading as %s", r.path, role)
		}

		return resolvedStream{child: file, childOwned: true}, nil

	case redirectWrite:
		flag := os.O_WRONLY | os.O_CREATE
		if r.append {
			flag |= os.O_APPEND
		} else {
			flag |= os.O_TRUNC
		}

		file, err := os.OpenFile(r.path, flag, 0644)
		if err != nil {
			return resolvedStream{}, configErrorf(err, "can't open %s for writing as %s", r.path, role)
		}

		return resolvedStream{child: file, childOwned: true}, nil

	case redirectPty:
		master, slave, err := openPty()
		if err != nil {
			return resolvedStream{}, configErrorf(err, "can't open a pty for %s", role)
		}

		return resolvedStream{child: slave, childOwned: true, parent: master, terminal: true}, nil

	default:
		return resolvedStream{}, configErrorf(nil, "%s has an invalid redirect", role)
	}
}

func (s *resolvedStreams) childEnds() []*os.File {
	var files []*os.File

	for _, stream := range []resolvedStream{s.stdin, s.stdout, s.stderr} {
		if stream.childOwned {
			files = append(files, stream.child)
		}
	}

	return files
}

func (s *resolvedStreams) parentEnds() []*os.File {
	return []*os.File{s.stdin.parent, s.stdout.parent, s.stderr.parent}
}

// closeChildEnds is called once the child has been spawned, the child holds its own copies by then
func (s *resolvedStreams) closeChildEnds() error {
	return closeAll(s.childEnds()...)
}

func (s *resolvedStreams) closeParentEnds() error {
	return closeAll(s.parentEnds()...)
}

func (s *resolvedStreams) closeAll() {
	s.closeChildEnds()
	s.closeParentEnds()
}
