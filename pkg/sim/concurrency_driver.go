package sim

import (
	"context"
	"time"
)

const driverPollInterval = 200 * time.Millisecond

// ConcurrencyDriver keeps a target number of concurrent scenario
// executions in flight for one user of one scenario (spec.md §4.6).
// One instance runs per assigned user per scenario.
type ConcurrencyDriver struct {
	scenario     *Scenario
	userID       int
	runner       *ScenarioRunner
	policy       Runner
	state        *scenarioState
	counters     *SharedCounters
	clock        Clock
	start        int64
	// baseConcurrency is the scenario's steady-state target: the
	// number of users assigned to it. distribution's multiplier
	// scales this, not a fixed 1 (spec.md §4.6).
	baseConcurrency int
	distribution    DistributionFunc
	stop            *forceStop
	rampUpDelay     time.Duration
}

// Run drives scenario for userID until the Runner says stop or
// force-stop is signalled, emitting each ScenarioResult to sink. Run
// closes sink before returning (spec.md §4.6's "on exit, close the
// sink").
func (d *ConcurrencyDriver) Run(ctx context.Context, sink Sink[ScenarioResult]) {
	defer sink.Close()

	if d.rampUpDelay > 0 {
		d.clock.Sleep(ctx, d.rampUpDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if d.stop.IsSet() {
			return
		}
		if !d.policy.Continue(d.counters.sent(), d.start, d.clock.Now()) {
			return
		}

		eligible := true
		if d.distribution != nil {
			progress, duration := d.policy.Progress(d.counters.sent(), d.start, d.clock.Now())
			multiplier := d.distribution(progress, duration, d.scenario.Context)
			target := float64(d.baseConcurrency) * multiplier
			eligible = target > float64(d.state.inFlight.Load())
		}

		if !eligible {
			d.clock.Sleep(ctx, driverPollInterval)
			continue
		}

		d.state.inFlight.Add(1)
		requests := d.runner.RunOnce(ctx, d.scenario, d.userID, d.stop)
		d.state.inFlight.Add(-1)

		if len(requests) == 0 {
			continue
		}
		sink.Emit(ScenarioResult{
			Name:     d.scenario.Name,
			ID:       d.userID,
			Start:    requests[0].Start,
			End:      requests[len(requests)-1].End,
			Requests: requests,
		})
	}
}
