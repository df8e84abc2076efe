package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Run is the engine's entry point (spec.md §4.8): `run(simulation,
// options) -> {results-stream, force-stop}`. It validates simulation
// and opts, partitions users (and rate) across scenarios, launches one
// driver per assigned user per scenario, and returns a single merged
// stream of ScenarioResults plus a handle to request cooperative
// shutdown.
//
// The returned channel closes once every driver has finished — either
// because the chosen Runner's Continue returned false everywhere, or
// because ForceStop.Stop was called and in-flight runs drained.
func Run(ctx context.Context, simulation *Simulation, opts Options) (<-chan ScenarioResult, ForceStop, error) {
	if err := validate(simulation, opts); err != nil {
		return nil, ForceStop{}, err
	}
	simulation.prepare()

	clock := opts.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	errorSink := opts.ErrorSink
	if errorSink == nil {
		errorSink = defaultSink()
	}
	progress := progressTrackerOrNoop(opts.ProgressTracker)

	userIDs := opts.userIDs()
	runner, err := selectRunner(opts, len(userIDs))
	if err != nil {
		return nil, ForceStop{}, err
	}

	weights := make([]int, len(simulation.Scenarios))
	for i := range simulation.Scenarios {
		weights[i] = simulation.Scenarios[i].weight()
	}
	userSplit := splitUsers(userIDs, weights)
	var rateSplit []float64
	if opts.Rate > 0 {
		rateSplit = splitRate(opts.Rate, weights)
	}
	for i := range simulation.Scenarios {
		simulation.Scenarios[i].Users = userSplit[i]
		if rateSplit != nil && simulation.Scenarios[i].Rate == 0 {
			simulation.Scenarios[i].Rate = rateSplit[i]
		}
	}

	baseCtx := Merge(Context{}, opts.Context)
	baseCtx = Merge(baseCtx, simulation.Context)
	if opts.PreHook != nil {
		baseCtx = opts.PreHook(baseCtx)
	}

	counters := &SharedCounters{}
	stop := &forceStop{}
	start := clock.Now()
	executor := NewStepExecutor(clock, counters)

	globalCh := make(chan ScenarioResult)
	var wg sync.WaitGroup

	for i := range simulation.Scenarios {
		sc := &simulation.Scenarios[i]
		sc.Context = Merge(baseCtx, sc.Context)
		state := newScenarioState(start)
		scenarioRunner := NewScenarioRunner(executor, errorSink, opts.Timeout, runner, counters, start)
		rampStep := rampUpStep(opts, sc.Users)

		for rank, uid := range sc.Users {
			wg.Add(1)
			ch := make(chan ScenarioResult)
			sink := chanSink[ScenarioResult]{ch: ch}

			if sc.Rate > 0 {
				driver := &RateDriver{
					scenario:     sc,
					userID:       uid,
					runner:       scenarioRunner,
					policy:       runner,
					state:        state,
					counters:     counters,
					clock:        clock,
					start:        start,
					rate:         sc.Rate / float64(len(sc.Users)),
					distribution: opts.RateDistribution,
					jitter:       0.1,
					rng:          newDriverRand(uid),
					stop:         stop,
					rampUpDelay:  rampStep * time.Duration(rank),
				}
				go driver.Run(ctx, sink)
			} else {
				driver := &ConcurrencyDriver{
					scenario:        sc,
					userID:          uid,
					runner:          scenarioRunner,
					policy:          runner,
					state:           state,
					counters:        counters,
					clock:           clock,
					start:           start,
					baseConcurrency: len(sc.Users),
					distribution:    opts.ConcurrencyDistribution,
					stop:            stop,
					rampUpDelay:     rampStep * time.Duration(rank),
				}
				go driver.Run(ctx, sink)
			}

			go func(ch <-chan ScenarioResult) {
				defer wg.Done()
				for res := range ch {
					select {
					case globalCh <- res:
					case <-ctx.Done():
						return
					}
				}
			}(ch)
		}
	}

	go func() {
		wg.Wait()
		close(globalCh)
		if opts.PostHook != nil {
			opts.PostHook(baseCtx)
		}
	}()

	go reportProgress(ctx, progress, runner, counters, start, clock, stop)

	return globalCh, ForceStop{inner: stop}, nil
}

// rampUpStep returns the per-user stagger delay so that opts.RampUp,
// if set, is spread linearly across the users assigned to one scenario
// (SPEC_FULL.md §9.1's ramp-up supplement, generalized from a single
// concurrency driver to both driver kinds).
func rampUpStep(opts Options, userIDs []int) time.Duration {
	if opts.RampUp <= 0 || len(userIDs) <= 1 {
		return 0
	}
	return opts.RampUp / time.Duration(len(userIDs))
}

// newDriverRand seeds a per-driver random source deterministically
// from the user id so that jitter is reproducible given the same seed
// inputs, without sharing a single *rand.Rand across goroutines.
func newDriverRand(userID int) *rand.Rand {
	return rand.New(rand.NewSource(int64(userID)*2654435761 + 1))
}

// reportProgress polls the shared counters on a fixed cadence and
// forwards a snapshot to tracker until ctx is done or the force-stop
// signal is observed (spec.md §6's progress-tracker collaborator).
func reportProgress(ctx context.Context, tracker ProgressTracker, runner Runner, counters *SharedCounters, start int64, clock Clock, stop *forceStop) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stop.IsSet() {
				return
			}
			now := clock.Now()
			sent := counters.sent()
			fraction, elapsed := runner.Progress(sent, start, now)
			tracker.Report(elapsed, fraction, sent, counters.prepared())
			if !runner.Continue(sent, start, now) {
				stop.Set()
				return
			}
		}
	}
}
