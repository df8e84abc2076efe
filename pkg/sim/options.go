package sim

import "time"

// Options configures a simulation run (spec.md §6). At least one of
// Duration, RequestCount, or FixedRuns must be set; when several are,
// Duration wins, then RequestCount, then FixedRuns.
type Options struct {
	// Users, if set, is the exact list of user IDs to simulate.
	// Otherwise Concurrency virtual users numbered [0, Concurrency)
	// are used.
	Users       []int
	Concurrency int

	// Rate, if set, is the overall target arrivals/sec, split across
	// scenarios by weight (spec.md §4.3). If unset, scenarios run at
	// fixed concurrency instead.
	Rate float64

	// Context seeds the simulation-level context merged into every
	// scenario's starting context.
	Context Context

	// Timeout bounds every step execution (spec.md §4.4).
	Timeout time.Duration

	// Duration / RequestCount / FixedRuns select the Runner variant
	// (spec.md §4.2). FixedRuns is "each user runs the scenario K
	// times."
	Duration     time.Duration
	RequestCount int
	FixedRuns    int

	// RampUp staggers driver startup linearly across this duration
	// (SPEC_FULL.md §9.1), so the full population isn't launched in
	// the same instant.
	RampUp time.Duration

	// ConcurrencyDistribution / RateDistribution shape load over time
	// (spec.md §4.6/§4.7).
	ConcurrencyDistribution DistributionFunc
	RateDistribution        DistributionFunc

	// PreHook / PostHook run once at the simulation level.
	PreHook Hook
	PostHook Hook

	// ErrorSink receives step failures before they are stripped from
	// the emitted RequestResult (spec.md §4.5/§7). Defaults to a
	// logrus-backed sink if nil.
	ErrorSink ErrorSink

	// ProgressTracker is the external collaborator of spec.md §6.
	// Defaults to a no-op if nil.
	ProgressTracker ProgressTracker

	// Clock overrides the production clock; tests use this to
	// decouple from wall-clock time.
	Clock Clock
}

func (o Options) userIDs() []int {
	if len(o.Users) > 0 {
		return o.Users
	}
	ids := make([]int, o.Concurrency)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
