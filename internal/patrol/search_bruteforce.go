package patrol

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BruteForceSearch re-walks the patrol once per candidate obstacle. Only
// cells on the unobstructed path can change the patrol, so only those are
// tried. Re-walks share nothing but the read-only grid and run in parallel.
type BruteForceSearch struct {
	workers          int
	stepBudgetFactor int
}

func NewBruteForceSearch(workers, stepBudgetFactor int) *BruteForceSearch {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if stepBudgetFactor <= 0 {
		stepBudgetFactor = DefaultStepBudgetFactor
	}
	return &BruteForceSearch{workers: workers, stepBudgetFactor: stepBudgetFactor}
}

func (s *BruteForceSearch) Search(ctx context.Context, g *Grid) (*SearchResult, error) {
	start := g.FindAgent()
	budget := s.stepBudgetFactor * g.Area()

	base, err := NewWalker(g, WithStepBudget(budget)).Walk(start)
	if err != nil {
		return nil, err
	}
	if base.Outcome == OutcomeLooped {
		return &SearchResult{Patrol: base}, nil
	}

	cells := pathCells(g, base, start.Position)
	loops := make([]bool, len(cells))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, cell := range cells {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := NewWalker(g, WithObstacle(cell), WithStepBudget(budget)).Walk(start)
			if errors.Is(err, ErrRotationLimit) {
				// Boxed in by the extra obstacle: the agent spins in place
				// forever.
				loops[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("walk with obstacle at %s: %w", cell, err)
			}
			loops[i] = p.Outcome == OutcomeLooped
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []Position
	for i, looped := range loops {
		if looped {
			out = append(out, cells[i])
		}
	}
	return &SearchResult{Patrol: base, Candidates: sortPositions(out)}, nil
}

// pathCells lists the distinct open in-grid cells of p, excluding skip.
func pathCells(g *Grid, p *Patrol, skip Position) []Position {
	seen := map[Position]struct{}{skip: {}}
	var out []Position
	for _, s := range p.History {
		if _, ok := seen[s.Position]; ok {
			continue
		}
		seen[s.Position] = struct{}{}
		if cell, ok := g.At(s.Position); ok && cell == Open {
			out = append(out, s.Position)
		}
	}
	return out
}
