package report

import (
	"context"
	"sync"
	"time"

	"github.com/throng/throng/pkg/sim"
)

// stepStats aggregates the requests made by one named step across
// every scenario run and every user.
type stepStats struct {
	name         string
	requestCount int64
	successCount int64
	failureCount int64
	totalLatency int64 // microseconds
}

// Summary collects a simulation's result stream into latency and
// error statistics. It is safe for one goroutine to drain the result
// channel into it while another reads snapshots concurrently.
type Summary struct {
	mu sync.Mutex

	start time.Time
	end   time.Time

	totalScenarios int64
	totalRequests  int64
	successCount   int64
	failureCount   int64

	overall *latencyHistogram
	errors  map[string]int64
	steps   map[string]*stepStats
}

// NewSummary creates an empty Summary. start should be the wall-clock
// time the simulation began, used to compute throughput.
func NewSummary(start time.Time) *Summary {
	return &Summary{
		start:   start,
		overall: newLatencyHistogram(),
		errors:  make(map[string]int64),
		steps:   make(map[string]*stepStats),
	}
}

// Consume drains results until the channel closes or ctx is done,
// recording every request into the summary, then stamps the end time.
func (s *Summary) Consume(ctx context.Context, results <-chan sim.ScenarioResult) {
	for {
		select {
		case res, ok := <-results:
			if !ok {
				s.finish()
				return
			}
			s.recordScenario(res)
		case <-ctx.Done():
			s.finish()
			return
		}
	}
}

func (s *Summary) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end.IsZero() {
		s.end = time.Now()
	}
}

func (s *Summary) recordScenario(res sim.ScenarioResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalScenarios++
	for _, r := range res.Requests {
		s.recordRequestLocked(r)
	}
}

func (s *Summary) recordRequestLocked(r sim.RequestResult) {
	s.totalRequests++
	latencyUs := r.End.Sub(r.Start).Microseconds()
	s.overall.record(latencyUs)

	step := s.steps[r.Name]
	if step == nil {
		step = &stepStats{name: r.Name}
		s.steps[r.Name] = step
	}
	step.requestCount++
	step.totalLatency += latencyUs

	if r.Exception != nil {
		s.failureCount++
		step.failureCount++
		s.errors[r.Exception.Error()]++
		return
	}
	if !r.Result {
		s.failureCount++
		step.failureCount++
		return
	}
	s.successCount++
	step.successCount++
}

// Duration returns the wall-clock span covered so far.
func (s *Summary) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.end
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.start)
}

func (s *Summary) TotalRequests() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRequests
}

func (s *Summary) SuccessCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successCount
}

func (s *Summary) FailureCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureCount
}

// RequestsPerSecond divides the total requests by the elapsed
// duration; it returns 0 before any time has elapsed.
func (s *Summary) RequestsPerSecond() float64 {
	elapsed := s.Duration().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.TotalRequests()) / elapsed
}

func (s *Summary) AverageLatency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall.mean()
}

func (s *Summary) StdDevLatency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall.stdDev()
}

func (s *Summary) MinLatency() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall.min()
}

func (s *Summary) MaxLatency() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall.max()
}

func (s *Summary) Percentile(p float64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overall.count() == 0 {
		return 0
	}
	return s.overall.percentile(p)
}

// Errors returns a copy of the observed error-message tally.
func (s *Summary) Errors() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// StepSnapshot is a read-only view of one named step's aggregate
// stats, safe to hold after Summary keeps running.
type StepSnapshot struct {
	Name         string
	RequestCount int64
	SuccessCount int64
	FailureCount int64
	AvgLatencyUs float64
}

// Steps returns a snapshot of every step observed so far, in no
// particular order.
func (s *Summary) Steps() []StepSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StepSnapshot, 0, len(s.steps))
	for _, st := range s.steps {
		avg := 0.0
		if st.requestCount > 0 {
			avg = float64(st.totalLatency) / float64(st.requestCount)
		}
		out = append(out, StepSnapshot{
			Name:         st.name,
			RequestCount: st.requestCount,
			SuccessCount: st.successCount,
			FailureCount: st.failureCount,
			AvgLatencyUs: avg,
		})
	}
	return out
}

func (s *Summary) percentileLadder() []percentileBar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall.percentileLadder(defaultPercentileLadder)
}
