// internal/app/service_test.go
package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

type fakeParser struct {
	calls int
	err   error
}

func (f *fakeParser) Parse(raw string) (*patrol.Grid, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return patrol.NewParser().Parse(raw)
}

type fakeEngine struct {
	calls int
	mode  patrol.Mode
	fn    func(g *patrol.Grid) (*patrol.Report, error)
}

func (f *fakeEngine) Run(ctx context.Context, g *patrol.Grid, mode patrol.Mode) (*patrol.Report, error) {
	f.calls++
	f.mode = mode
	return f.fn(g)
}

func (f *fakeEngine) Probe(ctx context.Context, g *patrol.Grid, at patrol.Position) (*patrol.Patrol, error) {
	f.calls++
	return &patrol.Patrol{Outcome: patrol.OutcomeLooped, Visited: 7, Terminal: g.FindAgent()}, nil
}

type fakeTraceEngine struct {
	fakeEngine
}

func (f *fakeTraceEngine) RunWithTrace(ctx context.Context, g *patrol.Grid, mode patrol.Mode) (*patrol.Report, *patrol.ExecutionTrace, error) {
	r, err := f.Run(ctx, g, mode)
	return r, &patrol.ExecutionTrace{RunID: "run-1", Mode: mode}, err
}

type fakeCache struct {
	calls int
}

func (c *fakeCache) GetOrCompute(raw string, fn func() (*patrol.Grid, error)) (*patrol.Grid, error) {
	c.calls++
	return fn()
}

type fakeAsserter struct {
	passed bool
	err    error
}

func (f fakeAsserter) Check(cond string, r *patrol.Report) (bool, error) {
	return f.passed, f.err
}

func reportEngine() *fakeEngine {
	return &fakeEngine{
		fn: func(g *patrol.Grid) (*patrol.Report, error) {
			return &patrol.Report{Visited: 2, Obstacles: []patrol.Position{}, Outcome: patrol.OutcomeExited}, nil
		},
	}
}

func TestService_Analyze_ValidatesGrid(t *testing.T) {
	eng := reportEngine()
	s := NewService(&fakeParser{}, eng, &fakeCache{}, nil)

	if _, _, err := s.Analyze(context.Background(), " \n ", AnalyzeOptions{}); err == nil {
		t.Fatalf("expected error")
	}
	if eng.calls != 0 {
		t.Fatalf("expected engine not to run")
	}
}

func TestService_Analyze_ReturnsGridInfo(t *testing.T) {
	eng := reportEngine()
	c := &fakeCache{}
	s := NewService(&fakeParser{}, eng, c, nil)

	r, info, err := s.Analyze(context.Background(), "...\n.^.\n", AnalyzeOptions{Mode: patrol.ModeBruteForce})
	if err != nil {
		t.Fatal(err)
	}
	if r.Visited != 2 {
		t.Fatalf("unexpected report %+v", r)
	}
	if info.Width != 3 || info.Height != 2 || info.Hash == "" {
		t.Fatalf("unexpected grid info %+v", info)
	}
	if eng.mode != patrol.ModeBruteForce {
		t.Fatalf("expected mode to be passed through, got %q", eng.mode)
	}
	if c.calls != 1 {
		t.Fatalf("expected grid to go through the cache")
	}
}

func TestService_Analyze_AttachesExpectation(t *testing.T) {
	s := NewService(&fakeParser{}, reportEngine(), &fakeCache{}, fakeAsserter{passed: false})

	r, _, err := s.Analyze(context.Background(), ".^.", AnalyzeOptions{Expect: " loops == 1 "})
	if err != nil {
		t.Fatal(err)
	}
	if r.Expectation == nil || r.Expectation.Passed || r.Expectation.Expr != "loops == 1" {
		t.Fatalf("unexpected expectation %+v", r.Expectation)
	}
}

func TestService_Analyze_InvalidExpectation(t *testing.T) {
	s := NewService(&fakeParser{}, reportEngine(), &fakeCache{}, fakeAsserter{err: errors.New("bad")})

	if _, _, err := s.Analyze(context.Background(), ".^.", AnalyzeOptions{Expect: "x"}); err == nil {
		t.Fatalf("expected error")
	}

	s = NewService(&fakeParser{}, reportEngine(), &fakeCache{}, nil)
	if _, _, err := s.Analyze(context.Background(), ".^.", AnalyzeOptions{Expect: "x"}); err == nil {
		t.Fatalf("expected error without an asserter")
	}
}

func TestService_Analyze_BubblesUpErrors(t *testing.T) {
	s := NewService(&fakeParser{err: fmt.Errorf("parse fail")}, reportEngine(), &fakeCache{}, nil)
	if _, _, err := s.Analyze(context.Background(), "x", AnalyzeOptions{}); err == nil {
		t.Fatalf("expected parse error")
	}

	eng := &fakeEngine{
		fn: func(g *patrol.Grid) (*patrol.Report, error) {
			return nil, patrol.ErrStepBudget
		},
	}
	s = NewService(&fakeParser{}, eng, &fakeCache{}, nil)
	_, info, err := s.Analyze(context.Background(), ".^.", AnalyzeOptions{})
	if !errors.Is(err, patrol.ErrStepBudget) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if info == nil {
		t.Fatalf("expected grid info alongside engine errors")
	}
}

func TestService_AnalyzeWithTrace(t *testing.T) {
	eng := &fakeTraceEngine{fakeEngine: *reportEngine()}
	s := NewService(&fakeParser{}, eng, &fakeCache{}, nil)

	r, trace, _, err := s.AnalyzeWithTrace(context.Background(), ".^.", AnalyzeOptions{Mode: patrol.ModeCrossCheck})
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || trace == nil || trace.RunID != "run-1" || trace.Mode != patrol.ModeCrossCheck {
		t.Fatalf("unexpected trace %+v", trace)
	}
}

func TestService_AnalyzeWithTrace_FallsBackWithoutTraceEngine(t *testing.T) {
	s := NewService(&fakeParser{}, reportEngine(), &fakeCache{}, nil)

	r, trace, _, err := s.AnalyzeWithTrace(context.Background(), ".^.", AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || trace != nil {
		t.Fatalf("expected report without trace")
	}
}

func TestService_Probe(t *testing.T) {
	s := NewService(&fakeParser{}, reportEngine(), &fakeCache{}, nil)

	at := patrol.Position{X: 2, Y: 0}
	res, info, err := s.Probe(context.Background(), ".^.", at)
	if err != nil {
		t.Fatal(err)
	}
	if res.Obstacle != at || res.Outcome != patrol.OutcomeLooped || res.Visited != 7 {
		t.Fatalf("unexpected probe result %+v", res)
	}
	if info.Width != 3 {
		t.Fatalf("unexpected grid info %+v", info)
	}
}
