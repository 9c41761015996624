package background_drain

import (
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Drain reads a stream to EOF in the background, so the writer on the other
// end never blocks on a full pipe buffer.
type Drain struct {
	name   string
	done   chan struct{}
	result strings.Builder
	err    error
}

// Start begins draining source, decoding its bytes with enc (UTF-8 if nil).
// source is closed once EOF is reached or reading fails.
func Start(name string, source io.ReadCloser, enc encoding.Encoding) *Drain {
	if enc == nil {
		enc = unicode.UTF8
	}

	d := &Drain{
		name: name,
		done: make(chan struct{}),
	}

	go d.run(source, enc)

	return d
}

func (d *Drain) run(source io.ReadCloser, enc encoding.Encoding) {
	defer close(d.done)

	_, err := io.Copy(&d.result, transform.NewReader(source, enc.NewDecoder()))

	closeErr := source.Close()
	if err == nil {
		err = closeErr
	}

	d.err = err
}

func (d *Drain) Name() string {
	return d.name
}

// Await blocks until the source has been read to EOF and closed
func (d *Drain) Await() error {
	<-d.done
	return d.err
}

// Result returns the decoded text. Only meaningful once Await has returned.
func (d *Drain) Result() string {
	return d.result.String()
}

// AwaitAll waits for every drain and returns the first error encountered. nil drains are skipped.
func AwaitAll(drains ...*Drain) error {
	group := new(errgroup.Group)

	for _, d := range drains {
		if d == nil {
			continue
		}

		group.Go(d.Await)
	}

	return group.Wait()
}
