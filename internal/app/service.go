// internal/app/service.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

type Parser interface {
	Parse(raw string) (*patrol.Grid, error)
}

type Engine interface {
	Run(ctx context.Context, g *patrol.Grid, mode patrol.Mode) (*patrol.Report, error)
	Probe(ctx context.Context, g *patrol.Grid, at patrol.Position) (*patrol.Patrol, error)
}

type TraceEngine interface {
	RunWithTrace(ctx context.Context, g *patrol.Grid, mode patrol.Mode) (*patrol.Report, *patrol.ExecutionTrace, error)
}

type Cache interface {
	GetOrCompute(raw string, fn func() (*patrol.Grid, error)) (*patrol.Grid, error)
}

type Asserter interface {
	Check(cond string, r *patrol.Report) (bool, error)
}

type Service struct {
	parser   Parser
	engine   Engine
	cache    Cache
	asserter Asserter
}

func NewService(parser Parser, engine Engine, cache Cache, asserter Asserter) *Service {
	return &Service{parser: parser, engine: engine, cache: cache, asserter: asserter}
}

// Analyze parses (cached) and runs the patrol, then checks the optional
// expectation. A failed expectation is reported, not returned as an error.
func (s *Service) Analyze(ctx context.Context, raw string, opts AnalyzeOptions) (*patrol.Report, *GridInfo, error) {
	g, info, err := s.grid(raw)
	if err != nil {
		return nil, nil, err
	}

	r, err := s.engine.Run(ctx, g, opts.Mode)
	if err != nil {
		return nil, info, err
	}
	if err := s.expect(r, opts.Expect); err != nil {
		return nil, info, err
	}
	return r, info, nil
}

func (s *Service) AnalyzeWithTrace(ctx context.Context, raw string, opts AnalyzeOptions) (*patrol.Report, *AnalyzeTrace, *GridInfo, error) {
	g, info, err := s.grid(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	traceEngine, ok := s.engine.(TraceEngine)
	if !ok {
		r, err := s.engine.Run(ctx, g, opts.Mode)
		if err != nil {
			return nil, nil, info, err
		}
		if err := s.expect(r, opts.Expect); err != nil {
			return nil, nil, info, err
		}
		return r, nil, info, nil
	}

	r, trace, err := traceEngine.RunWithTrace(ctx, g, opts.Mode)
	if err != nil {
		return nil, trace, info, err
	}
	if err := s.expect(r, opts.Expect); err != nil {
		return nil, trace, info, err
	}
	return r, trace, info, nil
}

func (s *Service) Probe(ctx context.Context, raw string, at patrol.Position) (*ProbeResult, *GridInfo, error) {
	g, info, err := s.grid(raw)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.engine.Probe(ctx, g, at)
	if err != nil {
		return nil, info, err
	}
	return &ProbeResult{
		Obstacle: at,
		Outcome:  p.Outcome,
		Visited:  p.Visited,
		Terminal: p.Terminal,
	}, info, nil
}

func (s *Service) grid(raw string) (*patrol.Grid, *GridInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, fmt.Errorf("grid is required")
	}

	g, err := s.cache.GetOrCompute(raw, func() (*patrol.Grid, error) {
		return s.parser.Parse(raw)
	})
	if err != nil {
		return nil, nil, err
	}
	return g, &GridInfo{Width: g.Width(), Height: g.Height(), Hash: g.Hash()}, nil
}

func (s *Service) expect(r *patrol.Report, cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil
	}
	if s.asserter == nil {
		return fmt.Errorf("expectations are not enabled")
	}

	passed, err := s.asserter.Check(cond, r)
	if err != nil {
		return fmt.Errorf("invalid expectation: %w", err)
	}
	r.Expectation = &patrol.Expectation{Expr: cond, Passed: passed}
	return nil
}
