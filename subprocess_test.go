//go:build unix

package subprocess

import (
	"bytes"
	"testing"
	"time"

	"github.com/codecrafters-io/subprocess/logger"
	"github.com/codecrafters-io/subprocess/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec(t *testing.T) {
	result, err := Run([]string{"sh", "-c", "cat; echo warning >&2"}, WithInput("hello"))
	require.NoError(t, err)

	assert.Equal(t, "hello", result.Output)
	assert.Equal(t, "warning\n", result.Errors)
	assert.Equal(t, 0, result.ExitCode)
}

func TestExecWithCheck(t *testing.T) {
	result, err := Run([]string{"sh", "-c", "echo boom >&2; exit 4"}, WithCheck())

	var exitErr *process.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Result.ExitCode)
	assert.Equal(t, "process exited with exit code 4: boom", err.Error())
	assert.Equal(t, 4, result.ExitCode)

	_, err = Run([]string{"sh", "-c", "exit 0"}, WithCheck())
	assert.NoError(t, err)
}

func TestExecWithoutCheckReturnsNonZeroExit(t *testing.T) {
	result, err := Run([]string{"sh", "-c", "exit 4"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.ExitCode)
}

func TestExecValidatesOptionsBeforeStarting(t *testing.T) {
	dir := t.TempDir()
	marker := dir + "/started"

	_, err := Run([]string{"touch", marker}, WithTimeout(0))
	assert.IsType(t, &process.ConfigError{}, err)
	assert.NoFileExists(t, marker)
}

func TestExecTimeout(t *testing.T) {
	startTime := time.Now()

	result, err := Run([]string{"sleep", "20"},
		WithTimeout(200*time.Millisecond),
		WithKillTimeout(time.Second),
	)
	require.NoError(t, err)

	assert.Less(t, time.Since(startTime), 5*time.Second)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestExecLogsWithLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(&buf, true, "[exec] ")

	_, err := Run([]string{"true"}, WithLogger(l), WithBackend(process.ExecBackend()))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "[exec] Started true")
}

func TestExecUnknownProgram(t *testing.T) {
	_, err := Run([]string{"definitely-not-a-command-on-path"})
	assert.IsType(t, &process.ConfigError{}, err)

	_, err = Run(nil)
	assert.IsType(t, &process.ConfigError{}, err)
}
