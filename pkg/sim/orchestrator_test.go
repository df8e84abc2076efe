package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainAll(t *testing.T, ch <-chan ScenarioResult, timeout time.Duration) []ScenarioResult {
	t.Helper()
	var out []ScenarioResult
	deadline := time.After(timeout)
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, res)
		case <-deadline:
			t.Fatal("timed out draining result stream")
		}
	}
}

func TestRun_ValidationErrorBeforeAnyWorkStarts(t *testing.T) {
	sim := &Simulation{Scenarios: []Scenario{}}
	_, _, err := Run(context.Background(), sim, Options{Concurrency: 2, RequestCount: 10})
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRun_EveryUserCompletesFixedRuns(t *testing.T) {
	var starts []int
	sim := &Simulation{
		Scenarios: []Scenario{
			{
				Name: "only",
				Steps: []Step{
					{Name: "a", Request: func(ctx Context) (any, error) {
						starts = append(starts, ctx["userId"].(int))
						return true, nil
					}},
				},
			},
		},
	}

	ch, _, err := Run(context.Background(), sim, Options{Concurrency: 3, FixedRuns: 2})
	require.NoError(t, err)

	results := drainAll(t, ch, 5*time.Second)
	// Each driver checks Continue before launching a run, so the shared
	// sent-counter target (3 users * 2 runs) can be overshot slightly by
	// concurrent drivers racing past the check together, but never by
	// much more than the number of users.
	assert.GreaterOrEqual(t, len(results), 6)
	assert.LessOrEqual(t, len(results), 6+3)
	assert.NotEmpty(t, starts)
}

func TestRun_WeightedScenariosPartitionUsers(t *testing.T) {
	sim := &Simulation{
		Scenarios: []Scenario{
			{Name: "light", Weight: 1, Steps: []Step{{Name: "s", Request: func(ctx Context) (any, error) { return true, nil }}}},
			{Name: "heavy", Weight: 3, Steps: []Step{{Name: "s", Request: func(ctx Context) (any, error) { return true, nil }}}},
		},
	}

	ch, _, err := Run(context.Background(), sim, Options{Concurrency: 8, FixedRuns: 1})
	require.NoError(t, err)
	results := drainAll(t, ch, 5*time.Second)

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Name]++
	}
	assert.Greater(t, counts["heavy"], counts["light"])
	total := counts["light"] + counts["heavy"]
	assert.GreaterOrEqual(t, total, 8)
	assert.LessOrEqual(t, total, 8+8)
}

func TestRun_ForceStopHaltsNewLaunches(t *testing.T) {
	sim := &Simulation{
		Scenarios: []Scenario{
			{
				Name: "loopy",
				Steps: []Step{
					{Name: "a", Request: func(ctx Context) (any, error) { return true, nil }},
				},
				AllowEarlyTermination: true,
			},
		},
	}

	ch, stop, err := Run(context.Background(), sim, Options{Concurrency: 2, Duration: time.Hour})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	stop.Stop()
	assert.True(t, stop.Stopped())

	drainAll(t, ch, 5*time.Second)
}

func TestRun_PreHookContextReachesSteps(t *testing.T) {
	var seen Context
	sim := &Simulation{
		Scenarios: []Scenario{
			{Name: "only", Steps: []Step{
				{Name: "s", Request: func(ctx Context) (any, error) { seen = ctx; return true, nil }},
			}},
		},
	}

	opts := Options{
		Concurrency: 1,
		FixedRuns:   1,
		PreHook: func(ctx Context) Context {
			return Merge(ctx, Context{"token": "xyz"})
		},
	}
	ch, _, err := Run(context.Background(), sim, opts)
	require.NoError(t, err)
	drainAll(t, ch, 5*time.Second)

	assert.Equal(t, "xyz", seen["token"])
}
