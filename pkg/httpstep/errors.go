package httpstep

import "strings"

// categorizeError normalizes a transport error into a short, stable
// label so that many distinct dial/TLS/timeout errors for the same
// underlying cause group together in a run's results instead of each
// carrying its own unique message text.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "connection refused"):
		return "connection refused"
	case strings.Contains(errStr, "no such host"), strings.Contains(errStr, "lookup"):
		return "dns lookup failed"
	case strings.Contains(errStr, "connection reset"):
		return "connection reset by peer"
	case strings.Contains(errStr, "broken pipe"):
		return "broken pipe"
	case strings.Contains(errStr, "network is unreachable"):
		return "network unreachable"
	case strings.Contains(errStr, "i/o timeout"):
		return "i/o timeout"
	case strings.Contains(errStr, "TLS handshake"):
		return "tls handshake error"
	case strings.Contains(errStr, "certificate"):
		return "certificate error"
	case strings.Contains(errStr, "EOF"):
		return "connection closed (eof)"
	case strings.Contains(errStr, "context deadline exceeded"), strings.Contains(errStr, "context canceled"):
		return "request timeout"
	}

	if len(errStr) > 80 {
		return errStr[:77] + "..."
	}
	return errStr
}
