package patrol

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Searcher finds loop-inducing obstacle positions for a grid.
type Searcher interface {
	Search(ctx context.Context, g *Grid) (*SearchResult, error)
}

type Engine struct {
	mode             Mode
	stepBudgetFactor int
	workers          int
	observer         PhaseObserver
	logger           *slog.Logger
}

type EngineOption func(*Engine)

// WithMode sets the mode used when Run is called with an empty mode.
func WithMode(m Mode) EngineOption {
	return func(e *Engine) {
		e.mode = m
	}
}

func WithStepBudgetFactor(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.stepBudgetFactor = n
		}
	}
}

func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithPhaseObserver(observer PhaseObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		mode:             ModeExtrapolate,
		stepBudgetFactor: DefaultStepBudgetFactor,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Run(ctx context.Context, g *Grid, mode Mode) (*Report, error) {
	return e.run(ctx, g, mode, uuid.NewString(), nil)
}

// RunWithTrace returns the trace even when the run fails.
func (e *Engine) RunWithTrace(ctx context.Context, g *Grid, mode Mode) (*Report, *ExecutionTrace, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("grid is nil")
	}
	tr := &ExecutionTrace{
		RunID: uuid.NewString(),
		Start: g.FindAgent(),
	}
	r, err := e.run(ctx, g, mode, tr.RunID, tr)
	if err != nil {
		tr.Terminated = terminationFor(err)
		return nil, tr, err
	}
	tr.Terminated = string(r.Outcome)
	return r, tr, nil
}

// Probe walks the patrol once with an extra obstacle at p.
func (e *Engine) Probe(ctx context.Context, g *Grid, p Position) (*Patrol, error) {
	if g == nil {
		return nil, fmt.Errorf("grid is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := g.FindAgent()
	if _, ok := g.At(p); !ok {
		return nil, fmt.Errorf("obstacle %s is off the grid", p)
	}
	if p == start.Position {
		return nil, fmt.Errorf("obstacle %s is on the agent's start", p)
	}

	began := time.Now()
	out, err := NewWalker(g, WithObstacle(p), WithStepBudget(e.stepBudgetFactor*g.Area())).Walk(start)
	e.observe(PhaseSample{
		RunID:    uuid.NewString(),
		Phase:    "walk",
		Duration: time.Since(began),
		Failed:   err != nil,
	})
	return out, err
}

type runScope struct {
	id   string
	mode Mode
	tr   *ExecutionTrace
}

func (e *Engine) run(ctx context.Context, g *Grid, mode Mode, runID string, tr *ExecutionTrace) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("grid is nil")
	}
	if mode == "" {
		mode = e.mode
	}
	if tr != nil {
		tr.Mode = mode
	}
	rs := runScope{id: runID, mode: mode, tr: tr}

	var (
		res           *SearchResult
		disagreements []Position
		err           error
	)
	switch mode {
	case ModeExtrapolate:
		res, err = e.phase(ctx, g, rs, "extrapolate", NewExtrapolatingSearch(e.stepBudgetFactor))
	case ModeBruteForce:
		res, err = e.phase(ctx, g, rs, "bruteforce", NewBruteForceSearch(e.workers, e.stepBudgetFactor))
	case ModeCrossCheck:
		var fast *SearchResult
		fast, err = e.phase(ctx, g, rs, "extrapolate", NewExtrapolatingSearch(e.stepBudgetFactor))
		if err != nil {
			return nil, err
		}
		res, err = e.phase(ctx, g, rs, "bruteforce", NewBruteForceSearch(e.workers, e.stepBudgetFactor))
		if err != nil {
			return nil, err
		}
		disagreements = symmetricDifference(fast.Candidates, res.Candidates)
		if len(disagreements) > 0 {
			e.logger.Warn("obstacle searches disagree",
				"run_id", runID,
				"extrapolated", len(fast.Candidates),
				"bruteforce", len(res.Candidates),
				"disagreements", len(disagreements),
			)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	obstacles := res.Candidates
	if obstacles == nil {
		obstacles = []Position{}
	}
	if tr != nil {
		tr.History = res.Patrol.History
		tr.Extrapolated = res.Extrapolated
	}
	return &Report{
		Visited:       res.Patrol.Visited,
		Terminal:      res.Patrol.Terminal,
		Outcome:       res.Patrol.Outcome,
		Mode:          mode,
		Obstacles:     obstacles,
		LoopCount:     len(obstacles),
		Disagreements: disagreements,
	}, nil
}

func (e *Engine) phase(ctx context.Context, g *Grid, rs runScope, name string, s Searcher) (*SearchResult, error) {
	began := time.Now()
	res, err := s.Search(ctx, g)
	sample := PhaseSample{
		RunID:    rs.id,
		Mode:     rs.mode,
		Phase:    name,
		Duration: time.Since(began),
		Failed:   err != nil,
	}
	if err == nil {
		sample.Candidates = len(res.Candidates)
	}
	e.observe(sample)

	if rs.tr != nil {
		pt := PhaseTrace{Name: name, DurationMicros: sample.Duration.Microseconds(), Candidates: sample.Candidates}
		if err != nil {
			pt.Error = err.Error()
		}
		rs.tr.Phases = append(rs.tr.Phases, pt)
	}
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", name, err)
	}
	return res, nil
}

func (e *Engine) observe(s PhaseSample) {
	if e.observer == nil {
		return
	}
	e.observer.ObservePhase(s)
}

func symmetricDifference(a, b []Position) []Position {
	inA := make(map[Position]struct{}, len(a))
	for _, p := range a {
		inA[p] = struct{}{}
	}
	inB := make(map[Position]struct{}, len(b))
	for _, p := range b {
		inB[p] = struct{}{}
	}

	var out []Position
	for _, p := range a {
		if _, ok := inB[p]; !ok {
			out = append(out, p)
		}
	}
	for _, p := range b {
		if _, ok := inA[p]; !ok {
			out = append(out, p)
		}
	}
	return sortPositions(out)
}
