package report

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// Bar renders a live progress bar driven by the orchestrator's
// periodic progress callbacks, with a running summary's rate and
// latency folded in next to the percentage. It implements
// sim.ProgressTracker.
type Bar struct {
	summary *Summary

	blockCount  int
	currentText string
	mutex       sync.Mutex
	done        bool
	quiet       bool
}

// NewBar creates a progress bar that reads live stats from summary.
// If quiet is true, Report and Finish are no-ops.
func NewBar(summary *Summary, quiet bool) *Bar {
	b := &Bar{
		summary:    summary,
		blockCount: 50,
		quiet:      quiet,
	}
	if !quiet {
		fmt.Print("\033[?25l") // hide cursor
		b.resetBar()
	}
	return b
}

// Report satisfies sim.ProgressTracker: it's called roughly twice a
// second with the run's current fraction complete and request counts.
func (b *Bar) Report(elapsed time.Duration, fraction float64, sent, prepared int64) {
	if b.quiet {
		return
	}
	if fraction >= 0.999 {
		fraction = 1.0
	}
	fraction = math.Max(0, math.Min(1, fraction))

	blockCount := int(fraction * float64(b.blockCount))
	percent := int(fraction * 100)

	rate := b.summary.RequestsPerSecond()
	avg := b.summary.AverageLatency()
	errs := b.summary.FailureCount()

	text := fmt.Sprintf(" %3d%% [%s%s] Reqs: %d | Rate: %.1f/s | Avg: %s | Err: %d",
		percent,
		strings.Repeat("=", blockCount),
		strings.Repeat(" ", b.blockCount-blockCount),
		sent,
		rate,
		formatLatency(avg),
		errs)

	b.updateText(text)
}

func (b *Bar) updateText(text string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	common := 0
	max := len(b.currentText)
	if len(text) < max {
		max = len(text)
	}
	for common < max && text[common] == b.currentText[common] {
		common++
	}

	var out strings.Builder
	for i := 0; i < len(b.currentText)-common; i++ {
		out.WriteRune('\b')
	}
	out.WriteString(text[common:])

	overlap := len(b.currentText) - len(text)
	if overlap > 0 {
		out.WriteString(strings.Repeat(" ", overlap))
		out.WriteString(strings.Repeat("\b", overlap))
	}

	fmt.Print(out.String())
	b.currentText = text
}

func (b *Bar) resetBar() {
	b.updateText(fmt.Sprintf(" %3d%% [%s]", 0, strings.Repeat(" ", b.blockCount)))
}

// Finish renders a final 100% line and restores the cursor.
func (b *Bar) Finish() {
	if b.quiet {
		return
	}

	b.mutex.Lock()
	if b.done {
		b.mutex.Unlock()
		return
	}
	b.done = true
	b.mutex.Unlock()

	text := fmt.Sprintf(" 100%% [%s] %.0fs (%d requests)",
		strings.Repeat("=", b.blockCount), b.summary.Duration().Seconds(), b.summary.TotalRequests())
	b.updateText(text)
	fmt.Println()
	fmt.Print("\033[?25h") // show cursor
}
