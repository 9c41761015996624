// Package subprocess_testing has helpers for tests that run child processes.
//
// They accept the testing.T interface from go-testing-interface, so they can be
// used from tests as well as from test harnesses outside of "go test".
package subprocess_testing

import (
	"github.com/codecrafters-io/subprocess"
	"github.com/codecrafters-io/subprocess/process"
	testing "github.com/mitchellh/go-testing-interface"
)

// MustArguments builds process arguments, failing t if they're invalid
func MustArguments(t testing.T, argv []string, opts ...process.ArgumentsOption) process.Arguments {
	t.Helper()

	args, err := process.NewArguments(argv, opts...)
	if err != nil {
		t.Fatalf("invalid arguments %q: %s", argv, err)
	}

	return args
}

// MustExec runs args to completion, failing t if it couldn't be run.
// A non-zero exit only fails t when subprocess.WithCheck is passed.
func MustExec(t testing.T, args process.Arguments, opts ...subprocess.Option) process.CommunicateResult {
	t.Helper()

	result, err := subprocess.Exec(args, opts...)
	if err != nil {
		t.Fatalf("running %q failed: %s", args.Argv(), err)
	}

	return result
}

// MustStart starts args, failing t if it couldn't be started.
// The process is killed and its streams closed when t finishes.
func MustStart(t testing.T, args process.Arguments, opts ...process.StartOption) *process.Process {
	t.Helper()

	p, err := process.Start(args, opts...)
	if err != nil {
		t.Fatalf("starting %q failed: %s", args.Argv(), err)
		return nil
	}

	t.Cleanup(func() {
		p.Kill()

		if _, err := p.Wait(); err != nil {
			t.Logf("waiting for %q failed: %s", args.Argv(), err)
		}

		p.Close()
	})

	return p
}
