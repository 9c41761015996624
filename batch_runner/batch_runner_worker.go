package batch_runner

import (
	"strings"

	"github.com/codecrafters-io/subprocess"
	"github.com/codecrafters-io/subprocess/logger"
	"github.com/codecrafters-io/subprocess/process"
)

type batchRunnerWorker struct {
	runner BatchRunner
	step   Step
	logger *logger.Logger
}

func newBatchRunnerWorker(runner BatchRunner, step Step) *batchRunnerWorker {
	return &batchRunnerWorker{
		runner: runner,
		step:   step,
		logger: runner.logger.WithSecondaryPrefix(step.Name),
	}
}

func (w *batchRunnerWorker) Run() StepResult {
	w.logger.Infof("$ %s", strings.Join(w.step.Arguments.Argv(), " "))

	result, err := subprocess.Exec(w.step.Arguments, w.step.execOptions(w.logger)...)

	if output := strings.TrimRight(result.Output, "\n"); output != "" {
		w.logger.Plainln(output)
	}

	switch {
	case process.IsExitError(err):
		w.logger.Errorf("%s", err)
	case err != nil:
		w.logger.Errorf("Failed to run step: %s", err)
	default:
		w.logger.Successf("Exited with code %d", result.ExitCode)
	}

	return StepResult{
		Step:   w.step,
		Result: result,
		Err:    err,
	}
}
