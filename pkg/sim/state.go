package sim

import "sync/atomic"

// SharedCounters are the process-wide atomics for one simulation
// (spec.md §3). They are created at simulation start, live for the
// simulation's duration, and are discarded once the result stream
// closes. All access is through atomic operations — no locks.
type SharedCounters struct {
	preparedRequests atomic.Int64
	sentRequests     atomic.Int64
}

func (c *SharedCounters) incSent() int64     { return c.sentRequests.Add(1) }
func (c *SharedCounters) sent() int64        { return c.sentRequests.Load() }
func (c *SharedCounters) incPrepared() int64  { return c.preparedRequests.Add(1) }
func (c *SharedCounters) prepared() int64     { return c.preparedRequests.Load() }

// scenarioState is the per-scenario shared state a simulation's
// drivers mutate: the in-flight count (Concurrency Driver) and the
// RunTracker (Rate Driver). Per spec.md §5, each is mutated only by
// that scenario's own drivers — no cross-scenario contention, so a
// plain atomic per field is sufficient without any additional
// locking.
type scenarioState struct {
	inFlight   atomic.Int64
	nextTrigger atomic.Int64 // RunTracker: next trigger time, clock ms
}

func newScenarioState(start int64) *scenarioState {
	s := &scenarioState{}
	s.nextTrigger.Store(start)
	return s
}

// forceStop is a write-once, read-many shutdown signal (spec.md §5's
// "edge-triggered single-shot"). Any driver or the caller may Set it;
// every driver polls IsSet before launching new work.
type forceStop struct {
	flag atomic.Bool
}

func (f *forceStop) Set()          { f.flag.Store(true) }
func (f *forceStop) IsSet() bool   { return f.flag.Load() }

// ForceStop is the handle a caller of Run gets back to request
// cooperative shutdown (spec.md §6 / glossary).
type ForceStop struct {
	inner *forceStop
}

// Stop signals every driver to stop launching new scenario runs.
// In-flight runs complete naturally.
func (f ForceStop) Stop() {
	if f.inner != nil {
		f.inner.Set()
	}
}

// Stopped reports whether Stop has been called.
func (f ForceStop) Stopped() bool {
	return f.inner != nil && f.inner.IsSet()
}
