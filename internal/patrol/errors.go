package patrol

import (
	"errors"
	"fmt"
)

// ParseError reports malformed grid input. Line and Column are 1-based;
// zero means the error is not tied to a location.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	default:
		return "parse error: " + e.Reason
	}
}

var (
	ErrStepBudget          = errors.New("step budget exceeded")
	ErrRotationLimit       = errors.New("agent rotated in place without progress")
	ErrExtrapolationBounds = errors.New("backward extrapolation from off-grid state")
)

// InvariantViolation signals a bug or a contradictory input, never a
// recoverable condition.
type InvariantViolation struct {
	Rule  string
	State AgentState
	Err   error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %q violated at %s: %v", e.Rule, e.State, e.Err)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

func violation(rule string, s AgentState, err error) error {
	return &InvariantViolation{Rule: rule, State: s, Err: err}
}
