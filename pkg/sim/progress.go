package sim

import "time"

// ProgressTracker receives periodic progress reports while a
// simulation runs (spec.md §6). Implementations must return quickly:
// Report is called from the orchestrator's own goroutine, never
// concurrently.
type ProgressTracker interface {
	Report(elapsed time.Duration, fraction float64, sent, prepared int64)
}

// noopProgressTracker discards every report. It is the default when
// Options.ProgressTracker is nil, so callers that don't care about
// progress never pay for it.
type noopProgressTracker struct{}

func (noopProgressTracker) Report(time.Duration, float64, int64, int64) {}

func progressTrackerOrNoop(p ProgressTracker) ProgressTracker {
	if p == nil {
		return noopProgressTracker{}
	}
	return p
}
