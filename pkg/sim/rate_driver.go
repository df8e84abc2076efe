package sim

import (
	"context"
	"math/rand"
	"time"
)

// RateDriver fires scenario runs for one user at a target rate rather
// than keeping a concurrency target in flight (spec.md §4.7). Each
// iteration commits to a future trigger time before running, so the
// simulation's "prepared" counter can be incremented ahead of the run
// actually starting — the behavior that rules out golang.org/x/time/rate
// as a substitute, since a token bucket has no notion of a committed
// future slot to report back to a Runner.Continue check.
type RateDriver struct {
	scenario *Scenario
	userID   int
	runner   *ScenarioRunner
	policy   Runner
	state    *scenarioState
	counters *SharedCounters
	clock    Clock
	start    int64

	rate         float64
	distribution DistributionFunc
	jitter       float64 // fraction of the interval, e.g. 0.1 for +/-10%
	rng          *rand.Rand

	stop        *forceStop
	rampUpDelay time.Duration
}

// Run fires scenario runs for userID at the driver's target rate until
// the Runner says stop or force-stop is signalled, emitting each
// ScenarioResult to sink, then closes sink.
func (d *RateDriver) Run(ctx context.Context, sink Sink[ScenarioResult]) {
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

		rate := d.rate
		if d.distribution != nil {
			progress, duration := d.policy.Progress(d.counters.sent(), d.start, d.clock.Now())
			rate = d.rate * d.distribution(progress, duration, d.scenario.Context)
		}
		if rate <= 0 {
			d.clock.Sleep(ctx, driverPollInterval)
			continue
		}

		interval := time.Duration(float64(time.Second) / rate)
		delay := d.jittered(interval)

		now := d.clock.Now()
		trigger := now + delay.Milliseconds()

		if !d.policy.Continue(d.counters.sent(), d.start, trigger) {
			return
		}

		// Commit to the slot before sleeping toward it: this is the
		// RunTracker's advance-and-report step (spec.md §4.7).
		d.state.nextTrigger.Store(trigger)
		d.counters.incPrepared()

		d.clock.Sleep(ctx, delay)
		if d.stop.IsSet() {
			return
		}

		requests := d.runner.RunOnce(ctx, d.scenario, d.userID, d.stop)
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

// jittered applies the driver's jitter fraction to interval, producing
// a measurable spread around the nominal interval (spec.md §8 property
// 8) rather than a fixed-period tick.
func (d *RateDriver) jittered(interval time.Duration) time.Duration {
	if d.jitter <= 0 || d.rng == nil {
		return interval
	}
	spread := float64(interval) * d.jitter
	offset := (d.rng.Float64()*2 - 1) * spread
	jittered := float64(interval) + offset
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}
