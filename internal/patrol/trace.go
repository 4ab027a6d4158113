package patrol

import (
	"context"
	"errors"
)

type ExecutionTrace struct {
	RunID        string         `json:"run_id"`
	Mode         Mode           `json:"mode"`
	Start        AgentState     `json:"start"`
	History      []AgentState   `json:"history"`
	Extrapolated []Extrapolated `json:"extrapolated,omitempty"`
	Phases       []PhaseTrace   `json:"phases"`
	Terminated   string         `json:"terminated"`
}

type PhaseTrace struct {
	Name           string `json:"name"`
	DurationMicros int64  `json:"duration_micros"`
	Candidates     int    `json:"candidates"`
	Error          string `json:"error,omitempty"`
}

func terminationFor(err error) string {
	switch {
	case errors.Is(err, ErrStepBudget):
		return "error_step_budget"
	case errors.Is(err, ErrRotationLimit):
		return "error_rotation_limit"
	case errors.Is(err, ErrExtrapolationBounds):
		return "error_extrapolation_bounds"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "error_cancelled"
	default:
		return "error"
	}
}
