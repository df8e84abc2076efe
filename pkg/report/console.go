package report

import (
	"fmt"
	"io"
)

var defaultPercentiles = []float64{50, 75, 90, 99}

// WriteConsole prints a human-readable summary of s to w.
func WriteConsole(w io.Writer, name string, s *Summary) {
	if name != "" {
		fmt.Fprintf(w, "\n%s\n", name)
	}
	fmt.Fprintln(w, "\nStatistics        Avg      Stdev        Max")
	fmt.Fprintf(w, "  Reqs/sec    %10.2f\n", s.RequestsPerSecond())
	fmt.Fprintf(w, "  Latency      %8s   %8s    %7s\n",
		formatLatency(s.AverageLatency()), formatLatency(s.StdDevLatency()), formatLatency(float64(s.MaxLatency())))

	fmt.Fprintln(w, "  Latency Distribution")
	for _, p := range defaultPercentiles {
		fmt.Fprintf(w, "     %g%%    %s\n", p, formatLatency(float64(s.Percentile(p))))
	}

	fmt.Fprintf(w, "  Requests: %d, Success: %d, Failed: %d\n", s.TotalRequests(), s.SuccessCount(), s.FailureCount())

	if errs := s.Errors(); len(errs) > 0 {
		fmt.Fprintln(w, "  Errors:")
		for msg, count := range errs {
			fmt.Fprintf(w, "    %s - %d\n", msg, count)
		}
	}

	steps := s.Steps()
	if len(steps) > 1 {
		fmt.Fprintln(w, "\n  Per-Step Statistics:")
		for _, st := range steps {
			fmt.Fprintf(w, "    %s\n", st.Name)
			fmt.Fprintf(w, "      Requests: %d, Success: %d, Failed: %d, Avg Latency: %s\n",
				st.RequestCount, st.SuccessCount, st.FailureCount, formatLatency(st.AvgLatencyUs))
		}
	}

	fmt.Fprint(w, renderLatencyLadder(s.percentileLadder(), 40))
}

// WriteConsoleQuiet prints a single summary line, for runs invoked
// with -quiet.
func WriteConsoleQuiet(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "Requests: %d, Duration: %.2fs, Req/s: %.2f, Avg Latency: %s, Errors: %d\n",
		s.TotalRequests(),
		s.Duration().Seconds(),
		s.RequestsPerSecond(),
		formatLatency(s.AverageLatency()),
		s.FailureCount())
}
