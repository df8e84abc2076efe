package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBar_QuietModeSkipsRendering(t *testing.T) {
	b := NewBar(NewSummary(time.Now()), true)
	assert.NotPanics(t, func() {
		b.Report(time.Second, 0.5, 10, 12)
		b.Finish()
	})
}

func TestBar_ReportClampsFractionIntoRange(t *testing.T) {
	b := NewBar(NewSummary(time.Now()), false)
	// Out-of-range fractions must not panic the bar math.
	assert.NotPanics(t, func() {
		b.Report(time.Second, -1, 0, 0)
		b.Report(time.Second, 2, 0, 0)
	})
}

func TestBar_FinishIsIdempotent(t *testing.T) {
	b := NewBar(NewSummary(time.Now()), false)
	b.Finish()
	assert.NotPanics(t, func() { b.Finish() })
}
