package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepExecutor_SuccessfulStep(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "ping",
		Request: func(ctx Context) (any, error) {
			return true, nil
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.True(t, res.Result)
	assert.NoError(t, res.Exception)
}

func TestStepExecutor_ErrorReturnBecomesFailedResult(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	boom := errors.New("boom")
	step := Step{
		Name: "fail",
		Request: func(ctx Context) (any, error) {
			return nil, boom
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.False(t, res.Result)
	require.Error(t, res.Exception)
	assert.ErrorIs(t, res.Exception, boom)
}

func TestStepExecutor_PanicBecomesFailedResult(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "panics",
		Request: func(ctx Context) (any, error) {
			panic("kaboom")
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.False(t, res.Result)
	require.Error(t, res.Exception)
	assert.Contains(t, res.Exception.Error(), "kaboom")
}

func TestStepExecutor_TimeoutProducesSyntheticException(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "slow",
		Request: func(ctx Context) (any, error) {
			time.Sleep(100 * time.Millisecond)
			return true, nil
		},
	}
	res := e.Execute(context.Background(), step, 10*time.Millisecond, Context{}, 1)
	assert.False(t, res.Result)
	require.Error(t, res.Exception)
	assert.Contains(t, res.Exception.Error(), "timed out")
}

func TestStepExecutor_WithContextCarriesContextForward(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "carries",
		Request: func(ctx Context) (any, error) {
			return WithContext{Value: true, Context: Context{"token": "abc"}}, nil
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.True(t, res.Result)
	assert.Equal(t, "abc", res.ContextAfter["token"])
}

func TestStepExecutor_FutureIsAwaited(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "deferred",
		Request: func(ctx Context) (any, error) {
			return completedFuture{val: true}, nil
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.True(t, res.Result)
}

func TestStepExecutor_NilValueIsFalsy(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name: "nils",
		Request: func(ctx Context) (any, error) {
			return nil, nil
		},
	}
	res := e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.False(t, res.Result)
	assert.NoError(t, res.Exception)
}

func TestStepExecutor_IncrementsSentCounter(t *testing.T) {
	counters := &SharedCounters{}
	e := NewStepExecutor(NewSystemClock(), counters)
	step := Step{
		Name:    "noop",
		Request: func(ctx Context) (any, error) { return true, nil },
	}
	e.Execute(context.Background(), step, time.Second, Context{}, 1)
	e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.EqualValues(t, 2, counters.sent())
}

func TestStepExecutor_SleepBeforeDelaysExecution(t *testing.T) {
	e := NewStepExecutor(NewSystemClock(), &SharedCounters{})
	step := Step{
		Name:        "delayed",
		SleepBefore: func(ctx Context) int64 { return 20 },
		Request:     func(ctx Context) (any, error) { return true, nil },
	}
	start := time.Now()
	e.Execute(context.Background(), step, time.Second, Context{}, 1)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
