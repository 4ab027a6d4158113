package patrol

import (
	"context"
	"slices"
)

// SearchResult is the unobstructed patrol plus the loop-inducing obstacle
// positions a search found, sorted by (Y, X).
type SearchResult struct {
	Patrol       *Patrol
	Candidates   []Position
	Extrapolated []Extrapolated
}

// ExtrapolatingSearch finds loop-inducing obstacles during a single real
// patrol. Before each new state is recorded it probes whether turning right
// there would land on a state already walked or backward-extrapolated; if
// so, an obstacle straight ahead forces that turn.
//
// The probe only sees states on the real path and on straight lines leading
// into it, so a loop that closes entirely off the real path goes unseen.
// BruteForceSearch is the reference.
type ExtrapolatingSearch struct {
	stepBudgetFactor int
}

func NewExtrapolatingSearch(stepBudgetFactor int) *ExtrapolatingSearch {
	if stepBudgetFactor <= 0 {
		stepBudgetFactor = DefaultStepBudgetFactor
	}
	return &ExtrapolatingSearch{stepBudgetFactor: stepBudgetFactor}
}

type extrapolation struct {
	grid         *Grid
	start        AgentState
	history      []AgentState
	walked       map[AgentState]struct{}
	extrapolated map[AgentState]struct{}
	backward     []Extrapolated
	visited      map[Position]struct{}
	found        map[Position]struct{}
	candidates   []Position
}

func (s *ExtrapolatingSearch) Search(ctx context.Context, g *Grid) (*SearchResult, error) {
	start := g.FindAgent()
	w := NewWalker(g)
	budget := s.stepBudgetFactor * g.Area()

	e := &extrapolation{
		grid:         g,
		start:        start,
		walked:       map[AgentState]struct{}{},
		extrapolated: map[AgentState]struct{}{},
		visited:      map[Position]struct{}{},
		found:        map[Position]struct{}{},
	}
	if err := e.push(start); err != nil {
		return nil, err
	}

	cur := start
	rotations := 0
	for steps := 0; ; steps++ {
		if steps >= budget {
			return nil, violation("step budget", cur, ErrStepBudget)
		}
		if steps%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var next AgentState
		res := w.Step(cur)
		switch res.Kind {
		case StepExited:
			e.history = append(e.history, res.State)
			return e.result(OutcomeExited, res.State), nil
		case StepBlocked:
			rotations++
			if rotations > maxRotations {
				return nil, violation("rotation without progress", cur, ErrRotationLimit)
			}
			next = AgentState{Position: cur.Position, Facing: cur.Facing.Rotate()}
		case StepMoved:
			rotations = 0
			next = res.State
		}

		if _, ok := e.walked[next]; ok {
			// The unobstructed patrol never exits; no single obstacle is
			// needed to make it loop.
			e.candidates = nil
			return e.result(OutcomeLooped, next), nil
		}
		e.probe(next)
		if err := e.push(next); err != nil {
			return nil, err
		}
		cur = next
	}
}

func (e *extrapolation) known(s AgentState) bool {
	if _, ok := e.walked[s]; ok {
		return true
	}
	_, ok := e.extrapolated[s]
	return ok
}

// probe records the cell ahead of s when a right turn at s would rejoin a
// known state.
func (e *extrapolation) probe(s AgentState) {
	turned := s.Facing.Rotate()
	rejoin := AgentState{Position: s.Position.Step(turned), Facing: turned}
	if !e.grid.InBounds(rejoin.Position) || !e.known(rejoin) {
		return
	}

	ahead := s.Position.Step(s.Facing)
	cell, ok := e.grid.At(ahead)
	if !ok || cell == Blocked || ahead == e.start.Position {
		return
	}
	if _, dup := e.found[ahead]; dup {
		return
	}
	e.found[ahead] = struct{}{}
	e.candidates = append(e.candidates, ahead)
}

func (e *extrapolation) push(s AgentState) error {
	e.history = append(e.history, s)
	e.walked[s] = struct{}{}
	e.visited[s.Position] = struct{}{}
	return e.extrapolate(s)
}

// extrapolate walks backward from origin keeping its facing, stopping at
// the grid edge, a Blocked cell, or any known state.
func (e *extrapolation) extrapolate(origin AgentState) error {
	if !e.grid.InBounds(origin.Position) {
		return violation("extrapolation in bounds", origin, ErrExtrapolationBounds)
	}
	back := origin.Facing.Reverse()
	for p := origin.Position.Step(back); ; p = p.Step(back) {
		cell, ok := e.grid.At(p)
		if !ok || cell == Blocked {
			return nil
		}
		s := AgentState{Position: p, Facing: origin.Facing}
		if e.known(s) {
			return nil
		}
		e.extrapolated[s] = struct{}{}
		e.backward = append(e.backward, Extrapolated{State: s, Origin: origin})
	}
}

func (e *extrapolation) result(outcome Outcome, terminal AgentState) *SearchResult {
	return &SearchResult{
		Patrol: &Patrol{
			History:  e.history,
			Outcome:  outcome,
			Terminal: terminal,
			Visited:  len(e.visited),
		},
		Candidates:   sortPositions(e.candidates),
		Extrapolated: e.backward,
	}
}

func sortPositions(ps []Position) []Position {
	slices.SortFunc(ps, func(a, b Position) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return ps
}
