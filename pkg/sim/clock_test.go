package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_NowIsMonotonicallyNonDecreasing(t *testing.T) {
	c := NewSystemClock()
	a := c.Now()
	time.Sleep(5 * time.Millisecond)
	b := c.Now()
	assert.GreaterOrEqual(t, b, a)
}

func TestSystemClock_SleepReturnsAfterDuration(t *testing.T) {
	c := NewSystemClock()
	start := time.Now()
	c.Sleep(context.Background(), 10*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSystemClock_SleepReturnsEarlyOnCancel(t *testing.T) {
	c := NewSystemClock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	c.Sleep(ctx, time.Second)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSystemClock_SleepNonPositiveReturnsImmediately(t *testing.T) {
	c := NewSystemClock()
	start := time.Now()
	c.Sleep(context.Background(), 0)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
