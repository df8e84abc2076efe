package sim

import (
	"errors"
	"fmt"
)

// ValidationError wraps one or more configuration problems found
// before any worker starts (spec.md §7's "validation error"). It is
// always returned to the caller synchronously from Run; no goroutine
// is ever launched once one is returned.
type ValidationError struct {
	causes []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sim: invalid simulation: %s", errors.Join(e.causes...))
}

func (e *ValidationError) Unwrap() []error { return e.causes }

func errValidation(format string, args ...any) error {
	return &ValidationError{causes: []error{fmt.Errorf(format, args...)}}
}

func joinValidation(errs ...error) error {
	var causes []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			causes = append(causes, ve.causes...)
			continue
		}
		causes = append(causes, err)
	}
	if len(causes) == 0 {
		return nil
	}
	return &ValidationError{causes: causes}
}

// errTimeout is the synthetic exception recorded when a step's timeout
// wins the race (spec.md §4.4 step 6).
type errTimeout struct {
	timeoutMs int64
}

func (e *errTimeout) Error() string {
	return fmt.Sprintf("request timed out after %dms", e.timeoutMs)
}
