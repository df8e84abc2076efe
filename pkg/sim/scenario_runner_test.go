package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	failures []string
}

func (r *recordingSink) LogStepFailure(scenarioName, stepName string, userID int, err error) {
	r.failures = append(r.failures, stepName)
}

func newTestRunner(timeout time.Duration, errSink ErrorSink) (*ScenarioRunner, *SharedCounters) {
	counters := &SharedCounters{}
	executor := NewStepExecutor(NewSystemClock(), counters)
	return NewScenarioRunner(executor, errSink, timeout, nil, counters, 0), counters
}

func TestScenarioRunner_RunsAllStepsInOrder(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { order = append(order, "a"); return true, nil }},
		{Name: "b", Request: func(ctx Context) (any, error) { order = append(order, "b"); return true, nil }},
		{Name: "c", Request: func(ctx Context) (any, error) { order = append(order, "c"); return true, nil }},
	}
	scenario := &Scenario{Name: "seq", Steps: steps}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	results := runner.RunOnce(context.Background(), scenario, 1, nil)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	for _, r := range results {
		assert.True(t, r.Result)
		assert.NoError(t, r.Exception, "exceptions are logged, not reported")
	}
}

func TestScenarioRunner_StopsAfterFailureBySkipDefault(t *testing.T) {
	ran := []string{}
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { ran = append(ran, "a"); return false, nil }},
		{Name: "b", Request: func(ctx Context) (any, error) { ran = append(ran, "b"); return true, nil }},
	}
	scenario := &Scenario{Name: "fails", Steps: steps}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	results := runner.RunOnce(context.Background(), scenario, 1, nil)

	require.Len(t, results, 1)
	assert.Equal(t, []string{"a"}, ran)
	assert.False(t, results[0].Result)
}

func TestScenarioRunner_ContinuesAfterFailureWhenSkipDisabled(t *testing.T) {
	skip := false
	ran := []string{}
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { ran = append(ran, "a"); return false, nil }},
		{Name: "b", Request: func(ctx Context) (any, error) { ran = append(ran, "b"); return true, nil }},
	}
	scenario := &Scenario{Name: "continues", Steps: steps, SkipNextAfterFailure: &skip}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	results := runner.RunOnce(context.Background(), scenario, 1, nil)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestScenarioRunner_LogsExceptionsToErrorSinkButStripsFromResult(t *testing.T) {
	boom := errors.New("boom")
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { return nil, boom }},
	}
	scenario := &Scenario{Name: "erroring", Steps: steps}

	sink := &recordingSink{}
	runner, _ := newTestRunner(time.Second, sink)
	results := runner.RunOnce(context.Background(), scenario, 1, nil)

	require.Len(t, results, 1)
	assert.NoError(t, results[0].Exception, "exception must not survive into the reported record")
	assert.Equal(t, []string{"a"}, sink.failures)
}

func TestScenarioRunner_PreHookSeedsContextForFirstStep(t *testing.T) {
	var seen Context
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { seen = ctx; return true, nil }},
	}
	scenario := &Scenario{
		Name:  "hooked",
		Steps: steps,
		PreHook: func(ctx Context) Context {
			return Merge(ctx, Context{"seeded": true})
		},
	}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	runner.RunOnce(context.Background(), scenario, 7, nil)

	assert.Equal(t, true, seen["seeded"])
	assert.Equal(t, 7, seen["userId"])
}

func TestScenarioRunner_PostHookSeesFinalContext(t *testing.T) {
	var postCtx Context
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) {
			return WithContext{Value: true, Context: Context{"done": true}}, nil
		}},
	}
	scenario := &Scenario{
		Name:  "posthook",
		Steps: steps,
		PostHook: func(ctx Context) Context {
			postCtx = ctx
			return ctx
		},
	}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	runner.RunOnce(context.Background(), scenario, 1, nil)

	assert.Equal(t, true, postCtx["done"])
}

func TestScenarioRunner_ForceStopHaltsMidScenario(t *testing.T) {
	stop := &forceStop{}
	ran := []string{}
	steps := []Step{
		{Name: "a", Request: func(ctx Context) (any, error) { ran = append(ran, "a"); stop.Set(); return true, nil }},
		{Name: "b", Request: func(ctx Context) (any, error) { ran = append(ran, "b"); return true, nil }},
	}
	scenario := &Scenario{Name: "stoppable", Steps: steps}

	runner, _ := newTestRunner(time.Second, &recordingSink{})
	results := runner.RunOnce(context.Background(), scenario, 1, stop)

	require.Len(t, results, 1)
	assert.Equal(t, []string{"a"}, ran)
}
