package sim

import (
	"strconv"
	"time"
)

// Runner is the termination-policy authority for a simulation
// (spec.md §4.2 / glossary). Exactly one variant is active per run,
// selected from the options passed to Run.
type Runner interface {
	// Continue reports whether the simulation should keep launching
	// work. sent is the shared sent-requests counter; start is the
	// simulation's start time; nextRunAt is, for rate-driven callers,
	// the time (clock ms) the next run would be committed to — for
	// concurrency-driven callers it is the current time.
	Continue(sent int64, start int64, nextRunAt int64) bool
	// Progress reports how far through the run the simulation is, as
	// a fraction in [0,1], and how long it has been running.
	Progress(sent int64, start int64, now int64) (float64, time.Duration)
	// Info is a short human-readable description, used in logs and by
	// the demo CLI's startup banner.
	Info() string
}

// DurationRunner continues until a fixed wall-clock duration elapses.
type DurationRunner struct {
	Duration time.Duration
}

func (r DurationRunner) Continue(_ int64, start int64, nextRunAt int64) bool {
	return nextRunAt < start+r.Duration.Milliseconds()
}

func (r DurationRunner) Progress(_ int64, start int64, now int64) (float64, time.Duration) {
	elapsed := time.Duration(now-start) * time.Millisecond
	frac := float64(elapsed) / float64(r.Duration)
	return clamp01(frac), elapsed
}

func (r DurationRunner) Info() string {
	return "duration runner: " + r.Duration.String()
}

// RequestCountRunner continues until a fixed total number of requests
// have been sent across all scenarios and users.
type RequestCountRunner struct {
	Total int64
}

func (r RequestCountRunner) Continue(sent int64, _ int64, _ int64) bool {
	return sent < r.Total
}

func (r RequestCountRunner) Progress(sent int64, start int64, now int64) (float64, time.Duration) {
	elapsed := time.Duration(now-start) * time.Millisecond
	if r.Total <= 0 {
		return 1, elapsed
	}
	return clamp01(float64(sent) / float64(r.Total)), elapsed
}

func (r RequestCountRunner) Info() string {
	return "request-count runner: total=" + strconv.FormatInt(r.Total, 10)
}

// FixedRunsRunner continues until every user has run the scenario K
// times.
type FixedRunsRunner struct {
	RunsPerUser int64
	UserCount   int64
}

func (r FixedRunsRunner) target() int64 { return r.RunsPerUser * r.UserCount }

func (r FixedRunsRunner) Continue(sent int64, _ int64, _ int64) bool {
	return sent < r.target()
}

func (r FixedRunsRunner) Progress(sent int64, start int64, now int64) (float64, time.Duration) {
	elapsed := time.Duration(now-start) * time.Millisecond
	target := r.target()
	if target <= 0 {
		return 1, elapsed
	}
	return clamp01(float64(sent) / float64(target)), elapsed
}

func (r FixedRunsRunner) Info() string {
	return "fixed-runs runner: runsPerUser=" + strconv.FormatInt(r.RunsPerUser, 10) +
		" users=" + strconv.FormatInt(r.UserCount, 10)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// selectRunner picks the Runner variant named by Options, per spec.md
// §4.2's selection rule: duration, else request-count, else fixed-runs.
func selectRunner(opts Options, userCount int) (Runner, error) {
	switch {
	case opts.Duration > 0:
		return DurationRunner{Duration: opts.Duration}, nil
	case opts.RequestCount > 0:
		return RequestCountRunner{Total: int64(opts.RequestCount)}, nil
	case opts.FixedRuns > 0:
		return FixedRunsRunner{RunsPerUser: int64(opts.FixedRuns), UserCount: int64(userCount)}, nil
	default:
		return nil, errValidation("one of Duration, RequestCount, or FixedRuns must be set")
	}
}
