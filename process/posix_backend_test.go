//go:build unix

package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWithPosixBackend(t *testing.T, argv []string, opts ...ArgumentsOption) *Process {
	t.Helper()

	p, err := Start(mustArguments(t, argv, opts...), WithBackend(PosixBackend()))
	require.NoError(t, err)

	t.Cleanup(func() {
		p.Kill()
		p.Wait()
		p.Close()
	})

	return p
}

func TestPosixBackendExitCodes(t *testing.T) {
	for _, expected := range []int{0, 1, 120} {
		p := startWithPosixBackend(t, []string{"./test_helpers/exit_code.sh", itoa(expected)})

		exitCode, err := p.Wait()
		require.NoError(t, err)
		assert.Equal(t, expected, exitCode)
	}
}

func TestPosixBackendCommunicate(t *testing.T) {
	p := startWithPosixBackend(t, []string{"./test_helpers/echo_stdin.sh"})

	result := mustCommunicate(t, p, WithInput("via fork/exec\n"))
	assert.Equal(t, "via fork/exec\n", result.Output)
}

func TestPosixBackendEnvironmentAndDirectory(t *testing.T) {
	p := startWithPosixBackend(t,
		[]string{"./test_helpers/env_dump.sh", "ONLY_VAR"},
		WithEnvironment(map[string]string{"ONLY_VAR": "1"}),
		WithWorkingDirectory(t.TempDir()),
	)

	result := mustCommunicate(t, p)
	assert.Equal(t, "ONLY_VAR=1\n", result.Output)
}

func TestPosixBackendPolledWaitTimeout(t *testing.T) {
	p := startWithPosixBackend(t, []string{"./test_helpers/sleep_for.sh", "10"})

	_, isTimedWaiter := p.child.(timedWaiter)
	assert.False(t, isTimedWaiter)

	startTime := time.Now()
	_, exited, err := p.WaitTimeout(100 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, exited)
	assert.GreaterOrEqual(t, time.Since(startTime), 100*time.Millisecond)

	require.NoError(t, p.Terminate())

	exitCode, exited, err := p.WaitTimeout(5 * time.Second)
	require.NoError(t, err)
	assert.True(t, exited)
	assert.Equal(t, 128+15, exitCode)

	// Signalling a reaped child is a no-op
	assert.NoError(t, p.child.Kill())
	assert.NoError(t, p.child.Terminate())
}

func TestPosixBackendEscalation(t *testing.T) {
	p := startWithPosixBackend(t, []string{"./test_helpers/sleep_for.sh", "20"})

	startTime := time.Now()
	result := mustCommunicate(t, p, WithTimeout(200*time.Millisecond), WithKillTimeout(0))

	assert.Less(t, time.Since(startTime), 5*time.Second)
	assert.Equal(t, 128+9, result.ExitCode)
}
