package sim

import (
	"context"
	"time"
)

// ScenarioRunner walks one scenario's step sequence for one user
// (spec.md §4.5). It is stateless and safe to share across users; all
// per-run state lives on the stack of RunOnce.
type ScenarioRunner struct {
	executor  *StepExecutor
	errorSink ErrorSink
	timeout   time.Duration
	runner    Runner
	counters  *SharedCounters
	start     int64
}

// NewScenarioRunner builds a ScenarioRunner sharing the simulation's
// Step Executor, error sink, timeout, termination Runner, and start
// time (the last two are needed only when a scenario allows early
// termination).
func NewScenarioRunner(executor *StepExecutor, errorSink ErrorSink, timeout time.Duration, runner Runner, counters *SharedCounters, start int64) *ScenarioRunner {
	return &ScenarioRunner{
		executor:  executor,
		errorSink: errorSink,
		timeout:   timeout,
		runner:    runner,
		counters:  counters,
		start:     start,
	}
}

// RunOnce executes scenario once for userID and returns the collected
// RequestResults (spec.md §4.5). It never returns an error: all
// failures are encoded in the returned results (spec.md §7).
func (r *ScenarioRunner) RunOnce(ctx context.Context, scenario *Scenario, userID int, stop *forceStop) []RequestResult {
	baseCtx := Merge(Context{}, scenario.Context)
	if scenario.PreHook != nil {
		baseCtx = scenario.PreHook(baseCtx)
	}

	source := scenario.stepSource()
	var results []RequestResult
	stepCtx := baseCtx

	for {
		step, nextCtx, ok := source(stepCtx)
		if !ok {
			break
		}
		stepCtx = nextCtx

		mergedCtx := Merge(scenario.Context, stepCtx)
		res := r.executor.Execute(ctx, *step, r.timeout, mergedCtx, userID)
		if res.Exception != nil {
			r.errorSink.LogStepFailure(scenario.Name, step.Name, userID, res.Exception)
		}
		// The failure is logged above; it is not part of the reported
		// record (spec.md §4.5's failure policy).
		reported := res
		reported.Exception = nil
		results = append(results, reported)
		stepCtx = res.ContextAfter

		if !res.Result && scenario.skipNextAfterFailure() {
			break
		}
		if scenario.AllowEarlyTermination && r.runner != nil {
			sent := r.counters.sent()
			if !r.runner.Continue(sent, r.start, r.executor.clock.Now()) {
				break
			}
		}
		if stop != nil && stop.IsSet() {
			break
		}
	}

	if scenario.PostHook != nil {
		scenario.PostHook(stepCtx)
	}
	return results
}
