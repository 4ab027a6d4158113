package app

import (
	"context"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

type PatrolService interface {
	Analyze(ctx context.Context, raw string, opts AnalyzeOptions) (*patrol.Report, *GridInfo, error)
	AnalyzeWithTrace(ctx context.Context, raw string, opts AnalyzeOptions) (*patrol.Report, *AnalyzeTrace, *GridInfo, error)
	Probe(ctx context.Context, raw string, at patrol.Position) (*ProbeResult, *GridInfo, error)
}

type AnalyzeOptions struct {
	Mode   patrol.Mode
	Expect string
}

type GridInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Hash   string `json:"hash"`
}

// ProbeResult is the outcome of one patrol with an extra obstacle.
type ProbeResult struct {
	Obstacle patrol.Position   `json:"obstacle"`
	Outcome  patrol.Outcome    `json:"outcome"`
	Visited  int               `json:"visited"`
	Terminal patrol.AgentState `json:"terminal"`
}

type AnalyzeTrace = patrol.ExecutionTrace
