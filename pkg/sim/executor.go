package sim

import (
	"context"
	"time"
)

// Future is the "deferred value" of spec.md §9's design note: a step's
// request callback may return one instead of a plain value when its
// work completes asynchronously. Await blocks until the value is
// ready or ctx is done.
type Future interface {
	Await(ctx context.Context) (any, error)
}

// completedFuture wraps an already-available value so that a
// synchronous RequestFunc return can be handled by the same code path
// as a genuinely deferred one (spec.md §9: "wrap synchronous returns
// in a pre-completed instance").
type completedFuture struct {
	val any
	err error
}

func (f completedFuture) Await(context.Context) (any, error) { return f.val, f.err }

// asFuture normalizes a RequestFunc's return value: if it is already a
// Future, it is returned as-is; otherwise it is wrapped as completed.
func asFuture(v any, err error) Future {
	if f, ok := v.(Future); ok {
		return f
	}
	return completedFuture{val: v, err: err}
}

// parse implements spec.md §4.4 step 5's normalization: an
// exception-like value becomes a failed result; anything else becomes
// a successful result with truthy coercion.
func parse(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case error:
		return false, t
	case bool:
		return t, nil
	default:
		return true, nil
	}
}

// normalize implements spec.md §4.4 step 5 in full: a WithContext
// pair carries its own context forward; anything else inherits the
// input context unchanged.
func normalize(v any, inputCtx Context) (result bool, ctxAfter Context, exception error) {
	if wc, ok := v.(WithContext); ok {
		result, exception = parse(wc.Value)
		return result, wc.Context, exception
	}
	result, exception = parse(v)
	return result, inputCtx, exception
}

// StepExecutor runs one scenario step with a timeout and produces a
// normalized RequestResult. It never panics to its caller: a
// synchronous panic-equivalent (a returned error from Request) and an
// elapsed timeout both become a failed RequestResult (spec.md §4.4).
type StepExecutor struct {
	clock   Clock
	counters *SharedCounters
}

// NewStepExecutor builds a StepExecutor sharing the given clock and
// simulation-wide counters.
func NewStepExecutor(clock Clock, counters *SharedCounters) *StepExecutor {
	return &StepExecutor{clock: clock, counters: counters}
}

// Execute runs step once for userID, observing timeout, and returns
// exactly one RequestResult (spec.md §4.4's guarantee).
func (e *StepExecutor) Execute(ctx context.Context, step Step, timeout time.Duration, reqCtx Context, userID int) RequestResult {
	e.counters.incSent()

	if step.SleepBefore != nil {
		delayMs := step.SleepBefore(reqCtx)
		if delayMs > 0 {
			e.clock.Sleep(ctx, time.Duration(delayMs)*time.Millisecond)
		}
	}

	start := time.Now()
	execCtx := Merge(reqCtx, Context{"userId": userID})

	outcome := e.invoke(ctx, step, execCtx, timeout)
	end := time.Now()

	res := RequestResult{
		Name:          step.Name,
		ID:            userID,
		Start:         start,
		End:           end,
		ContextBefore: reqCtx,
	}

	if outcome.timedOut {
		res.Result = false
		res.Exception = &errTimeout{timeoutMs: timeout.Milliseconds()}
		res.ContextAfter = reqCtx
		return res
	}

	res.Result = outcome.result
	res.ContextAfter = outcome.ctxAfter
	res.Exception = outcome.exception
	if res.Exception != nil {
		res.Result = false
	}
	return res
}

type stepOutcome struct {
	result    bool
	ctxAfter  Context
	exception error
	timedOut  bool
}

// invoke races the step's (possibly deferred) response against the
// timeout, per spec.md §4.4 step 6. The losing branch of the race is
// orphaned rather than forcibly cancelled — spec.md §9's documented
// design accepts this leak absent cooperation from the user callback.
func (e *StepExecutor) invoke(ctx context.Context, step Step, execCtx Context, timeout time.Duration) stepOutcome {
	type awaited struct {
		v   any
		err error
	}
	done := make(chan awaited, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- awaited{err: panicToError(r)}
			}
		}()
		v, err := step.Request(execCtx)
		f := asFuture(v, err)
		fv, ferr := f.Await(ctx)
		if err != nil && ferr == nil {
			ferr = err
		}
		done <- awaited{v: fv, err: ferr}
	}()

	if timeout <= 0 {
		a := <-done
		if a.err != nil {
			return stepOutcome{result: false, ctxAfter: execCtx, exception: a.err}
		}
		result, ctxAfter, exception := normalize(a.v, execCtx)
		return stepOutcome{result: result, ctxAfter: ctxAfter, exception: exception}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case a := <-done:
		if a.err != nil {
			return stepOutcome{result: false, ctxAfter: execCtx, exception: a.err}
		}
		result, ctxAfter, exception := normalize(a.v, execCtx)
		return stepOutcome{result: result, ctxAfter: ctxAfter, exception: exception}
	case <-timer.C:
		return stepOutcome{timedOut: true}
	}
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{value: r}
}

type panicError struct{ value any }

func (e *panicError) Error() string {
	return "step panicked: " + toString(e.value)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if st, ok := v.(interface{ String() string }); ok {
		return st.String()
	}
	return "unknown panic value"
}
