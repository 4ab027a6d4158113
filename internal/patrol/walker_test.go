package patrol

import (
	"errors"
	"testing"
)

func TestWalker_Step(t *testing.T) {
	g := loadGrid(t, "sample.txt")
	w := NewWalker(g)

	res := w.Step(g.FindAgent())
	if res.Kind != StepMoved || res.State != (AgentState{Position: Position{X: 4, Y: 5}, Facing: Up}) {
		t.Fatalf("expected move to (4,5) up, got %s %s", res.Kind, res.State)
	}

	res = w.Step(AgentState{Position: Position{X: 4, Y: 1}, Facing: Up})
	if res.Kind != StepBlocked {
		t.Fatalf("expected blocked below (4,0), got %s", res.Kind)
	}

	res = w.Step(AgentState{Position: Position{X: 0, Y: 0}, Facing: Left})
	if res.Kind != StepExited || res.State.Position != (Position{X: -1, Y: 0}) {
		t.Fatalf("expected exit to (-1,0), got %s %s", res.Kind, res.State)
	}
}

func TestWalker_Step_ExtraObstacleBlocks(t *testing.T) {
	g := loadGrid(t, "sample.txt")
	w := NewWalker(g, WithObstacle(Position{X: 4, Y: 5}))

	if res := w.Step(g.FindAgent()); res.Kind != StepBlocked {
		t.Fatalf("expected extra obstacle to block, got %s", res.Kind)
	}
	if c, _ := g.At(Position{X: 4, Y: 5}); c != Open {
		t.Fatalf("expected grid to stay untouched")
	}
}

func TestWalker_Walk_Sample(t *testing.T) {
	g := loadGrid(t, "sample.txt")

	p, err := NewWalker(g).Walk(g.FindAgent())
	if err != nil {
		t.Fatal(err)
	}
	if p.Outcome != OutcomeExited {
		t.Fatalf("expected exited, got %s", p.Outcome)
	}
	if p.Visited != 41 {
		t.Fatalf("expected 41 visited, got %d", p.Visited)
	}
	want := AgentState{Position: Position{X: 7, Y: 10}, Facing: Down}
	if p.Terminal != want {
		t.Fatalf("expected terminal %s, got %s", want, p.Terminal)
	}
	if p.History[0] != g.FindAgent() || p.History[len(p.History)-1] != want {
		t.Fatalf("expected history to run from start to exit")
	}
	if len(p.History) != 56 {
		t.Fatalf("expected 56 states, got %d", len(p.History))
	}
}

func TestWalker_Walk_FromArbitraryState(t *testing.T) {
	g := loadGrid(t, "sample.txt")

	p, err := NewWalker(g).Walk(AgentState{Position: Position{X: 3, Y: 2}, Facing: Up})
	if err != nil {
		t.Fatal(err)
	}
	if p.Outcome != OutcomeExited || p.Visited != 3 {
		t.Fatalf("expected exit after 3 cells, got %s %d", p.Outcome, p.Visited)
	}
	if p.Terminal.Position != (Position{X: 3, Y: -1}) {
		t.Fatalf("unexpected terminal %s", p.Terminal)
	}
}

func TestWalker_Walk_ObstacleMakesLoop(t *testing.T) {
	g := loadGrid(t, "sample.txt")

	p, err := NewWalker(g, WithObstacle(Position{X: 3, Y: 6})).Walk(g.FindAgent())
	if err != nil {
		t.Fatal(err)
	}
	if p.Outcome != OutcomeLooped {
		t.Fatalf("expected looped, got %s", p.Outcome)
	}
	if p.Terminal != g.FindAgent() {
		t.Fatalf("expected loop to close on the start state, got %s", p.Terminal)
	}
}

func TestWalker_Walk_ClosedCircuit(t *testing.T) {
	g := loadGrid(t, "closed_circuit.txt")

	p, err := NewWalker(g).Walk(g.FindAgent())
	if err != nil {
		t.Fatal(err)
	}
	if p.Outcome != OutcomeLooped || p.Visited != 4 {
		t.Fatalf("expected loop over 4 cells, got %s %d", p.Outcome, p.Visited)
	}
	for _, s := range p.History {
		if s == p.Terminal && s != p.History[0] {
			t.Fatalf("terminal state recorded twice")
		}
	}
}

func TestWalker_Walk_BoxedIn(t *testing.T) {
	g := loadGrid(t, "boxed_in.txt")

	_, err := NewWalker(g).Walk(g.FindAgent())
	if !errors.Is(err, ErrRotationLimit) {
		t.Fatalf("expected ErrRotationLimit, got %v", err)
	}
	var iv *InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolation, got %T", err)
	}
	if iv.State.Position != g.FindAgent().Position {
		t.Fatalf("expected violation at the start cell, got %s", iv.State)
	}
}

func TestWalker_Walk_StepBudget(t *testing.T) {
	g := loadGrid(t, "sample.txt")

	_, err := NewWalker(g, WithStepBudget(3)).Walk(g.FindAgent())
	if !errors.Is(err, ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
}
