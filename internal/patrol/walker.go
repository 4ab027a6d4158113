package patrol

// DefaultStepBudgetFactor multiplies the grid area to bound a single walk.
const DefaultStepBudgetFactor = 10

// maxRotations is the most in-place turns an agent can make before one of
// its directions must be open; a fourth means it is boxed in.
const maxRotations = 3

type StepKind uint8

const (
	StepMoved StepKind = iota
	StepExited
	StepBlocked
)

func (k StepKind) String() string {
	switch k {
	case StepMoved:
		return "moved"
	case StepExited:
		return "exited"
	default:
		return "blocked"
	}
}

// StepResult carries the next state for StepMoved and StepExited; it is
// the zero state for StepBlocked.
type StepResult struct {
	Kind  StepKind
	State AgentState
}

type Walker struct {
	grid       *Grid
	obstacle   Position
	hasExtra   bool
	stepBudget int
}

type WalkerOption func(*Walker)

// WithObstacle adds one hypothetical Blocked cell without touching the grid.
func WithObstacle(p Position) WalkerOption {
	return func(w *Walker) {
		w.obstacle = p
		w.hasExtra = true
	}
}

func WithStepBudget(n int) WalkerOption {
	return func(w *Walker) {
		if n > 0 {
			w.stepBudget = n
		}
	}
}

func NewWalker(g *Grid, opts ...WalkerOption) *Walker {
	w := &Walker{grid: g, stepBudget: DefaultStepBudgetFactor * g.Area()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Step advances the agent by at most one cell. It never rotates; on
// StepBlocked the caller rotates and steps again.
func (w *Walker) Step(s AgentState) StepResult {
	next := s.Position.Step(s.Facing)
	cell, ok := w.grid.At(next)
	if !ok {
		return StepResult{Kind: StepExited, State: AgentState{Position: next, Facing: s.Facing}}
	}
	if cell == Blocked || (w.hasExtra && next == w.obstacle) {
		return StepResult{Kind: StepBlocked}
	}
	return StepResult{Kind: StepMoved, State: AgentState{Position: next, Facing: s.Facing}}
}

// Walk runs the patrol from start until the agent leaves the grid or
// repeats a state. Start may be any state, not only the grid's agent.
func (w *Walker) Walk(start AgentState) (*Patrol, error) {
	p := &Patrol{History: []AgentState{start}}
	seen := map[AgentState]struct{}{start: {}}
	visited := map[Position]struct{}{}
	if w.grid.InBounds(start.Position) {
		visited[start.Position] = struct{}{}
	}

	cur := start
	rotations := 0
	for steps := 0; ; steps++ {
		if steps >= w.stepBudget {
			return nil, violation("step budget", cur, ErrStepBudget)
		}

		var next AgentState
		res := w.Step(cur)
		switch res.Kind {
		case StepExited:
			p.History = append(p.History, res.State)
			p.Outcome = OutcomeExited
			p.Terminal = res.State
			p.Visited = len(visited)
			return p, nil
		case StepBlocked:
			rotations++
			if rotations > maxRotations {
				return nil, violation("rotation without progress", cur, ErrRotationLimit)
			}
			next = AgentState{Position: cur.Position, Facing: cur.Facing.Rotate()}
		case StepMoved:
			rotations = 0
			next = res.State
			visited[next.Position] = struct{}{}
		}

		if _, ok := seen[next]; ok {
			p.Outcome = OutcomeLooped
			p.Terminal = next
			p.Visited = len(visited)
			return p, nil
		}
		seen[next] = struct{}{}
		p.History = append(p.History, next)
		cur = next
	}
}
