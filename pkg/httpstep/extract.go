package httpstep

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Validation describes the assertions a step's response must satisfy.
// A nil Validation skips all checks.
type Validation struct {
	Status          any
	StatusRange     *StatusRange
	BodyContains    string
	BodyNotContains string
	JSONPath        map[string]any
	Headers         map[string]string
	MaxResponseTime time.Duration
}

// StatusRange is an inclusive [Min, Max] status-code band.
type StatusRange struct {
	Min int
	Max int
}

// validate checks resp/body against v and returns every violation
// found, mirroring the teacher's "collect all validation errors, don't
// stop at the first" behavior.
func validate(resp *http.Response, body string, v *Validation, responseTime time.Duration) []string {
	if v == nil {
		return nil
	}
	var errs []string

	if v.Status != nil && !matchStatus(resp.StatusCode, v.Status) {
		errs = append(errs, fmt.Sprintf("unexpected status code: got %d", resp.StatusCode))
	}
	if v.StatusRange != nil {
		if resp.StatusCode < v.StatusRange.Min || resp.StatusCode > v.StatusRange.Max {
			errs = append(errs, fmt.Sprintf("status code %d not in range [%d, %d]", resp.StatusCode, v.StatusRange.Min, v.StatusRange.Max))
		}
	}
	if v.BodyContains != "" && !strings.Contains(body, v.BodyContains) {
		errs = append(errs, fmt.Sprintf("body does not contain: %s", v.BodyContains))
	}
	if v.BodyNotContains != "" && strings.Contains(body, v.BodyNotContains) {
		errs = append(errs, fmt.Sprintf("body should not contain: %s", v.BodyNotContains))
	}
	for path, expected := range v.JSONPath {
		actual := gjson.Get(body, strings.TrimPrefix(path, "$."))
		if !matchJSONValue(actual, expected) {
			errs = append(errs, fmt.Sprintf("jsonpath %s: expected %v, got %v", path, expected, actual.Value()))
		}
	}
	for key, expected := range v.Headers {
		if actual := resp.Header.Get(key); actual != expected {
			errs = append(errs, fmt.Sprintf("header %s: expected %s, got %s", key, expected, actual))
		}
	}
	if v.MaxResponseTime > 0 && responseTime > v.MaxResponseTime {
		errs = append(errs, fmt.Sprintf("response time %s exceeds max %s", responseTime, v.MaxResponseTime))
	}

	return errs
}

func matchStatus(actual int, expected any) bool {
	switch v := expected.(type) {
	case int:
		return actual == v
	case []int:
		for _, e := range v {
			if actual == e {
				return true
			}
		}
		return false
	case []any:
		for _, e := range v {
			if code, ok := toInt(e); ok && actual == code {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func matchJSONValue(actual gjson.Result, expected any) bool {
	if !actual.Exists() {
		return false
	}
	switch v := expected.(type) {
	case bool:
		return actual.Bool() == v
	case int:
		return actual.Int() == int64(v)
	case float64:
		if float64(int64(v)) == v {
			return actual.Int() == int64(v)
		}
		return actual.Float() == v
	case string:
		if num, ok := strings.CutPrefix(v, ">= "); ok {
			if n, err := strconv.ParseFloat(num, 64); err == nil {
				return actual.Float() >= n
			}
		}
		if num, ok := strings.CutPrefix(v, "<= "); ok {
			if n, err := strconv.ParseFloat(num, 64); err == nil {
				return actual.Float() <= n
			}
		}
		if num, ok := strings.CutPrefix(v, "> "); ok {
			if n, err := strconv.ParseFloat(num, 64); err == nil {
				return actual.Float() > n
			}
		}
		if num, ok := strings.CutPrefix(v, "< "); ok {
			if n, err := strconv.ParseFloat(num, 64); err == nil {
				return actual.Float() < n
			}
		}
		return actual.String() == v
	default:
		return true
	}
}

// extractValue pulls one value out of body or headers per pathOrExpr:
// "header:Name" reads a response header, "regex:pattern" returns the
// first capture group (or the whole match), anything else is a gjson
// path.
func extractValue(body string, pathOrExpr string, headers http.Header) string {
	if name, ok := strings.CutPrefix(pathOrExpr, "header:"); ok {
		return headers.Get(name)
	}
	if pattern, ok := strings.CutPrefix(pathOrExpr, "regex:"); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ""
		}
		matches := re.FindStringSubmatch(body)
		switch {
		case len(matches) > 1:
			return matches[1]
		case len(matches) > 0:
			return matches[0]
		default:
			return ""
		}
	}
	result := gjson.Get(body, strings.TrimPrefix(pathOrExpr, "$."))
	if result.Exists() {
		return result.String()
	}
	return ""
}
