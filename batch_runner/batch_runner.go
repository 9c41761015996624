package batch_runner

import (
	"github.com/codecrafters-io/subprocess/logger"
	"github.com/codecrafters-io/subprocess/process"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when a BatchRunner is given a non-positive concurrency
const DefaultConcurrency = 8

// StepResult is the outcome of a single step
type StepResult struct {
	Step   Step
	Result process.CommunicateResult
	Err    error
}

func (r StepResult) Passed() bool {
	return r.Err == nil
}

// Report holds one StepResult per step, in the order the steps were given
type Report struct {
	Results []StepResult
}

func (r Report) Passed() bool {
	return len(r.Failed()) == 0
}

func (r Report) Failed() []StepResult {
	failed := []StepResult{}

	for _, result := range r.Results {
		if !result.Passed() {
			failed = append(failed, result)
		}
	}

	return failed
}

// BatchRunner runs multiple steps concurrently
type BatchRunner struct {
	steps       []Step
	logger      *logger.Logger
	concurrency int
}

func NewBatchRunner(steps []Step, l *logger.Logger, concurrency int) BatchRunner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return BatchRunner{
		steps:       steps,
		logger:      l,
		concurrency: concurrency,
	}
}

// Run runs every step, at most concurrency of them at a time, and waits for all of them
func (r BatchRunner) Run() Report {
	workerGroup := new(errgroup.Group)
	workerGroup.SetLimit(r.concurrency)

	results := make([]StepResult, len(r.steps))

	for i, step := range r.steps {
		i, step := i, step
		workerGroup.Go(func() error {
			results[i] = newBatchRunnerWorker(r, step).Run()
			return nil
		})
	}

	// Workers never fail, the group is only used for concurrency control
	workerGroup.Wait()

	report := Report{Results: results}

	if report.Passed() {
		r.logger.Successf("All %d steps passed", len(r.steps))
	} else {
		r.logger.Errorf("%d of %d steps failed", len(report.Failed()), len(r.steps))
	}

	return report
}
