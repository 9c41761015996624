//go:build unix

package process

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertErrorContains(t *testing.T, err error, expectedMsg string) {
	t.Helper()

	require.Error(t, err)
	assert.Contains(t, err.Error(), expectedMsg)
}

func mustArguments(t *testing.T, argv []string, opts ...ArgumentsOption) Arguments {
	t.Helper()

	args, err := NewArguments(argv, opts...)
	require.NoError(t, err)

	return args
}

func mustStart(t *testing.T, argv []string, opts ...ArgumentsOption) *Process {
	t.Helper()

	p, err := Start(mustArguments(t, argv, opts...))
	require.NoError(t, err)

	t.Cleanup(func() {
		p.Kill()
		p.Wait()
		p.Close()
	})

	return p
}

func mustCommunicate(t *testing.T, p *Process, opts ...CommunicateOption) CommunicateResult {
	t.Helper()

	result, err := p.Communicate(opts...)
	require.NoError(t, err)

	return result
}

// openFileCount returns how many descriptors this process has open.
// Tests using it are skipped where /proc isn't available.
func openFileCount(t *testing.T) int {
	t.Helper()

	// The first pipe sets up the runtime poller, which keeps descriptors of its own
	r, w, err := os.Pipe()
	require.NoError(t, err)
	r.Close()
	w.Close()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("/proc/self/fd isn't available")
	}

	return len(entries)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
