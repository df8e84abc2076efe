package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateDriver_CommitsPreparedCounterBeforeRunning(t *testing.T) {
	counters := &SharedCounters{}
	clock := NewSystemClock()
	executor := NewStepExecutor(clock, counters)
	policy := RequestCountRunner{Total: 3}
	scenarioRunner := NewScenarioRunner(executor, &recordingSink{}, time.Second, policy, counters, clock.Now())

	scenario := &Scenario{
		Name: "rated",
		Steps: []Step{
			{Name: "a", Request: func(ctx Context) (any, error) { return true, nil }},
		},
	}

	driver := &RateDriver{
		scenario: scenario,
		userID:   1,
		runner:   scenarioRunner,
		policy:   policy,
		state:    newScenarioState(clock.Now()),
		counters: counters,
		clock:    clock,
		start:    clock.Now(),
		rate:     50,
		jitter:   0,
		rng:      newDriverRand(1),
		stop:     &forceStop{},
	}

	ch := make(chan ScenarioResult, 32)
	done := make(chan struct{})
	go func() {
		driver.Run(context.Background(), chanSink[ScenarioResult]{ch: ch})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rate driver did not stop once the request count was reached")
	}

	assert.GreaterOrEqual(t, counters.prepared(), int64(1))
}

func TestRateDriver_JitterSpreadsIntervals(t *testing.T) {
	d := &RateDriver{jitter: 0.2, rng: newDriverRand(42)}
	base := 100 * time.Millisecond
	seen := map[time.Duration]bool{}
	for i := 0; i < 20; i++ {
		seen[d.jittered(base)] = true
	}
	assert.Greater(t, len(seen), 1, "jitter should produce varying intervals across calls")
}

func TestRateDriver_NoJitterReturnsExactInterval(t *testing.T) {
	d := &RateDriver{jitter: 0}
	base := 50 * time.Millisecond
	assert.Equal(t, base, d.jittered(base))
}
