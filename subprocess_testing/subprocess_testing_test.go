//go:build unix

package subprocess_testing

import (
	"testing"

	"github.com/codecrafters-io/subprocess"
	testinginterface "github.com/mitchellh/go-testing-interface"
	"github.com/stretchr/testify/assert"
)

// recordingT fails without stopping the goroutine, so the tests below can observe failures
type recordingT struct {
	testinginterface.RuntimeT
	failures []string
	cleanups []func()
}

func (t *recordingT) Fatalf(format string, args ...any) {
	t.failures = append(t.failures, format)
}

func (t *recordingT) Cleanup(fn func()) {
	t.cleanups = append(t.cleanups, fn)
}

func (t *recordingT) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
}

func TestMustExec(t *testing.T) {
	args := MustArguments(t, []string{"sh", "-c", "cat"})

	result := MustExec(t, args, subprocess.WithInput("ping"))

	assert.Equal(t, "ping", result.Output)
}

func TestMustExecFailsOnCheck(t *testing.T) {
	rt := &recordingT{}
	args := MustArguments(rt, []string{"sh", "-c", "exit 2"})

	MustExec(rt, args, subprocess.WithCheck())

	assert.Len(t, rt.failures, 1)
}

func TestMustArgumentsFails(t *testing.T) {
	rt := &recordingT{}

	MustArguments(rt, nil)

	assert.Len(t, rt.failures, 1)
}

func TestMustStartCleansUp(t *testing.T) {
	rt := &recordingT{}
	p := MustStart(rt, MustArguments(rt, []string{"sleep", "10"}))

	assert.Empty(t, rt.failures)

	alive, err := p.IsAlive()
	assert.NoError(t, err)
	assert.True(t, alive)

	rt.runCleanups()

	alive, err = p.IsAlive()
	assert.NoError(t, err)
	assert.False(t, alive)
}

func TestMustStartFails(t *testing.T) {
	rt := &recordingT{}

	p := MustStart(rt, MustArguments(rt, []string{"/does/not/exist"}))

	assert.Nil(t, p)
	assert.Len(t, rt.failures, 1)

}
