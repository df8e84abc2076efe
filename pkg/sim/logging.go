package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrorSink receives step failures after they have been recorded in a
// RequestResult but before the exception is stripped from the emitted
// record (spec.md §4.5/§7: "the exception was logged; it is not part
// of the reported record").
type ErrorSink interface {
	LogStepFailure(scenarioName, stepName string, userID int, err error)
}

// logrusErrorSink is the default ErrorSink, grounded in the
// sibling-engine logging pattern of inference-sim-inference-sim
// (structured, leveled warnings keyed on the failing component).
type logrusErrorSink struct {
	log *logrus.Logger
}

// NewLogrusErrorSink builds an ErrorSink around the given logrus
// logger. A nil logger gets a sane default (text formatter, Warn
// level, stderr).
func NewLogrusErrorSink(log *logrus.Logger) ErrorSink {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &logrusErrorSink{log: log}
}

func (s *logrusErrorSink) LogStepFailure(scenarioName, stepName string, userID int, err error) {
	s.log.WithFields(logrus.Fields{
		"scenario": scenarioName,
		"step":     stepName,
		"user":     userID,
	}).Warnf("step failed: %v", err)
}

// noopSink discards every step failure.
type noopSink struct{}

func (noopSink) LogStepFailure(string, string, int, error) {}

var defaultErrorSinkOnce sync.Once
var defaultErrorSink ErrorSink

func defaultSink() ErrorSink {
	defaultErrorSinkOnce.Do(func() {
		defaultErrorSink = NewLogrusErrorSink(nil)
	})
	return defaultErrorSink
}
