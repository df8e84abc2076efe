package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Result is the JSON rendering of a Summary.
type Result struct {
	Name           string              `json:"name,omitempty"`
	Timestamp      string              `json:"timestamp"`
	Duration       float64             `json:"duration_seconds"`
	TotalRequests  int64               `json:"total_requests"`
	SuccessCount   int64               `json:"success_count"`
	FailureCount   int64               `json:"failure_count"`
	RequestsPerSec float64             `json:"requests_per_second"`
	Latency        LatencyStats        `json:"latency"`
	Errors         map[string]int64    `json:"errors,omitempty"`
	Steps          []StepResult        `json:"steps,omitempty"`
}

// LatencyStats is the JSON rendering of a latency distribution.
type LatencyStats struct {
	Average     string            `json:"average"`
	StdDev      string            `json:"std_dev"`
	Min         string            `json:"min"`
	Max         string            `json:"max"`
	Percentiles map[string]string `json:"percentiles"`
}

// StepResult is the JSON rendering of one step's aggregate stats.
type StepResult struct {
	Name         string `json:"name"`
	RequestCount int64  `json:"request_count"`
	SuccessCount int64  `json:"success_count"`
	FailureCount int64  `json:"failure_count"`
	AvgLatency   string `json:"avg_latency"`
}

// ToResult converts a Summary into a serializable Result.
func ToResult(name string, s *Summary) *Result {
	percentiles := make(map[string]string, len(defaultPercentiles))
	for _, p := range defaultPercentiles {
		percentiles[fmt.Sprintf("p%g", p)] = formatLatency(float64(s.Percentile(p)))
	}

	result := &Result{
		Name:           name,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Duration:       s.Duration().Seconds(),
		TotalRequests:  s.TotalRequests(),
		SuccessCount:   s.SuccessCount(),
		FailureCount:   s.FailureCount(),
		RequestsPerSec: s.RequestsPerSecond(),
		Latency: LatencyStats{
			Average:     formatLatency(s.AverageLatency()),
			StdDev:      formatLatency(s.StdDevLatency()),
			Min:         formatLatency(float64(s.MinLatency())),
			Max:         formatLatency(float64(s.MaxLatency())),
			Percentiles: percentiles,
		},
		Errors: s.Errors(),
	}

	for _, st := range s.Steps() {
		result.Steps = append(result.Steps, StepResult{
			Name:         st.Name,
			RequestCount: st.RequestCount,
			SuccessCount: st.SuccessCount,
			FailureCount: st.FailureCount,
			AvgLatency:   formatLatency(st.AvgLatencyUs),
		})
	}

	return result
}

// WriteJSON encodes a Summary to w as indented JSON.
func WriteJSON(w io.Writer, name string, s *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ToResult(name, s)); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}
