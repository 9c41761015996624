//go:build unix

package process

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestCommunicateEchoRoundTrip(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/echo_stdin.sh"})

	input := "hello\nworld\nünïcödé\n"
	result := mustCommunicate(t, p, WithInput(input))

	assert.Equal(t, input, result.Output)
	assert.Equal(t, "", result.Errors)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Succeeded())
}

func TestCommunicateWithCharset(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/echo_stdin.sh"})

	result := mustCommunicate(t, p, WithInput("café"), WithCharset(charmap.ISO8859_1))
	assert.Equal(t, "café", result.Output)
}

func TestCommunicateCollectsBothStreams(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/both_streams.sh"})

	result := mustCommunicate(t, p)
	assert.Equal(t, "out\n", result.Output)
	assert.Equal(t, "err\n", result.Errors)
}

func TestCommunicateMergedStderr(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/both_streams.sh"}, WithStderr(Stdout))
	assert.Nil(t, p.Stderr())

	result := mustCommunicate(t, p)
	assert.Equal(t, "out\nerr\n", result.Output)
	assert.Equal(t, "", result.Errors)
}

func TestCommunicateDoesNotDeadlockOnLargeStreams(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/large_output.sh"})

	input := strings.Repeat("0123456789abcdef\n", 64*1024)
	result := mustCommunicate(t, p, WithInput(input), WithTimeout(30*time.Second))

	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, strings.HasSuffix(result.Output, input))
	assert.Equal(t, 2000, strings.Count(result.Errors, "\n"))
}

func TestCommunicateIgnoresChildNotReadingStdin(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/stdout_echo.sh", "done"})

	result := mustCommunicate(t, p, WithInput(strings.Repeat("x", 1024*1024)))
	assert.Equal(t, "done\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestCommunicateTimeoutTerminates(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/sleep_for.sh", "20"})

	startTime := time.Now()
	result := mustCommunicate(t, p, WithTimeout(300*time.Millisecond))

	assert.Less(t, time.Since(startTime), 5*time.Second)
	assert.Equal(t, 128+15, result.ExitCode)

	alive, err := p.IsAlive()
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestCommunicateKillsAfterKillTimeout(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/ignore_term.sh", "20"})

	// Wait until the TERM trap is installed
	line, err := bufio.NewReader(p.Stdout()).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ready\n", line)

	startTime := time.Now()
	result := mustCommunicate(t, p, WithTimeout(200*time.Millisecond), WithKillTimeout(200*time.Millisecond))

	assert.Less(t, time.Since(startTime), 5*time.Second)
	assert.Equal(t, 128+9, result.ExitCode)
}

func TestCommunicateFinishesBeforeTimeout(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/stdout_echo.sh", "quick"})

	result := mustCommunicate(t, p, WithTimeout(10*time.Second), WithKillTimeout(0))
	assert.Equal(t, "quick\n", result.Output)
	assert.Equal(t, 0, result.ExitCode)
}

func TestCommunicateValidatesOptions(t *testing.T) {
	assert.IsType(t, &ConfigError{}, CheckCommunicateOptions(WithTimeout(0)))
	assert.IsType(t, &ConfigError{}, CheckCommunicateOptions(WithKillTimeout(-time.Second)))
	assert.NoError(t, CheckCommunicateOptions(WithTimeout(time.Second), WithKillTimeout(0)))

	p := mustStart(t, []string{"./test_helpers/echo_stdin.sh"})

	_, err := p.Communicate(WithTimeout(-time.Second))
	assert.IsType(t, &ConfigError{}, err)
}

func TestCommunicateWithFileRedirects(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.txt")
	outputPath := filepath.Join(dir, "output.txt")

	require.NoError(t, os.WriteFile(inputPath, []byte("from a file\n"), 0644))

	for i := 0; i < 2; i++ {
		p := mustStart(t, []string{"./test_helpers/echo_stdin.sh"},
			WithStdin(Read(inputPath)),
			WithStdout(Write(outputPath, true)),
		)

		result := mustCommunicate(t, p)
		assert.Equal(t, "", result.Output)
	}

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "from a file\nfrom a file\n", string(contents))

	p := mustStart(t, []string{"./test_helpers/stdout_echo.sh", "replaced"}, WithStdout(Write(outputPath, false)))
	mustCommunicate(t, p)

	contents, err = os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", string(contents))
}

func TestCommunicateWithPtyStdout(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/stdout_echo.sh", "hello"}, WithStdout(Pty))

	result := mustCommunicate(t, p)

	// The terminal translates \n to \r\n
	assert.Equal(t, "hello\r\n", result.Output)
}

func TestCheck(t *testing.T) {
	p := mustStart(t, []string{"./test_helpers/stderr_echo.sh", "boom", "1"})

	result := mustCommunicate(t, p)
	err := result.Check()

	assertErrorContains(t, err, "boom")
	assert.True(t, IsExitError(err))
	assert.Equal(t, "process exited with exit code 1: boom", err.Error())

	assert.NoError(t, CommunicateResult{ExitCode: 0, Errors: "warnings are fine"}.Check())
}
