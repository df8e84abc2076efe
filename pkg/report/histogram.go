// Package report consumes a simulation's result stream and renders a
// summary: latency percentiles, status tallies, and per-step
// breakdowns, to the console or as JSON.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// latencyHistogram wraps an HdrHistogram tracking latencies in
// microseconds, 1us through 5 minutes, at 3 significant figures.
type latencyHistogram struct {
	histogram *hdrhistogram.Histogram
	minValue  int64
	maxValue  int64
}

const (
	histogramMinUs   = 1
	histogramMaxUs   = 5 * 60 * 1_000_000
	histogramSigFigs = 3
)

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{
		histogram: hdrhistogram.New(histogramMinUs, histogramMaxUs, histogramSigFigs),
		minValue:  math.MaxInt64,
	}
}

func (h *latencyHistogram) record(us int64) {
	if us < histogramMinUs {
		us = histogramMinUs
	}
	if us > histogramMaxUs {
		us = histogramMaxUs
	}
	_ = h.histogram.RecordValue(us)
	if us < h.minValue {
		h.minValue = us
	}
	if us > h.maxValue {
		h.maxValue = us
	}
}

func (h *latencyHistogram) mean() float64   { return h.histogram.Mean() }
func (h *latencyHistogram) stdDev() float64 { return h.histogram.StdDev() }
func (h *latencyHistogram) count() int64    { return h.histogram.TotalCount() }

func (h *latencyHistogram) min() int64 {
	if h.minValue == math.MaxInt64 {
		return 0
	}
	return h.minValue
}

func (h *latencyHistogram) max() int64 { return h.maxValue }

func (h *latencyHistogram) percentile(p float64) int64 {
	return h.histogram.ValueAtQuantile(p)
}

func (h *latencyHistogram) merge(other *latencyHistogram) {
	h.histogram.Merge(other.histogram)
	if other.minValue < h.minValue {
		h.minValue = other.minValue
	}
	if other.maxValue > h.maxValue {
		h.maxValue = other.maxValue
	}
}

// percentileBar is one rung of the latency ladder: a named quantile
// and the value the histogram recorded for it.
type percentileBar struct {
	label string
	value int64 // microseconds
}

var defaultPercentileLadder = []float64{50, 75, 90, 95, 99, 99.9}

// percentileLadder samples the histogram at each of ps, the way a
// live dashboard reads P50/P90/P95/P99 off a running HdrHistogram
// rather than rebuilding a frequency distribution over fixed ranges.
func (h *latencyHistogram) percentileLadder(ps []float64) []percentileBar {
	if h.count() == 0 {
		return nil
	}
	bars := make([]percentileBar, len(ps))
	for i, p := range ps {
		bars[i] = percentileBar{label: fmt.Sprintf("p%g", p), value: h.percentile(p)}
	}
	return bars
}

// formatLatency renders a microsecond duration using time.Duration's
// own scaling, the way a wrapped time.Duration formats naturally.
func formatLatency(us float64) string {
	return formatLatencyDuration(time.Duration(us * float64(time.Microsecond)))
}

func formatLatencyShort(us int64) string {
	return formatLatencyDuration(time.Duration(us) * time.Microsecond)
}

func formatLatencyDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.0fus", float64(d.Microseconds()))
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// renderLatencyLadder draws one bar per percentileBar, each bar's
// width proportional to its value relative to the slowest rung (p99.9
// is always the widest, p50 the narrowest) rather than a count-based
// frequency distribution.
func renderLatencyLadder(bars []percentileBar, maxBarWidth int) string {
	if len(bars) == 0 {
		return "  No data recorded\n"
	}

	var sb strings.Builder
	sb.WriteString("\nLatency Percentiles:\n")

	maxValue := int64(0)
	for _, b := range bars {
		if b.value > maxValue {
			maxValue = b.value
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}

	for _, b := range bars {
		label := fmt.Sprintf("%-8s", b.label)

		barWidth := int(math.Round(float64(b.value) / float64(maxValue) * float64(maxBarWidth)))
		if barWidth > maxBarWidth {
			barWidth = maxBarWidth
		}
		if barWidth < 0 {
			barWidth = 0
		}

		sb.WriteString(fmt.Sprintf("%s [%s%s] %s\n",
			label, strings.Repeat("#", barWidth), strings.Repeat(" ", maxBarWidth-barWidth), formatLatencyShort(b.value)))
	}

	return sb.String()
}
