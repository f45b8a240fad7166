package scenario

import (
	"fmt"
	"log"
)

// AssertionMode selects how unmet expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps the run going.
	AssertionLogOnly
)

// Assertions reports scenario expectations according to the configured mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf reports a scenario failure regardless of mode. Use it for malformed
// steps and broken preconditions, not for expectations under test.
func (a Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf reports an unmet expectation: an error in strict mode, a log line
// in log-only mode.
func (a Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionStrict {
		return fmt.Errorf(format, args...)
	}
	if a.Logger != nil {
		a.Logger.Printf("assertion: "+format, args...)
	}
	return nil
}
