package expect

import (
	"strings"
	"sync"

	"github.com/expr-lang/expr/vm"

	"github.com/awmpietro/guard-patrol-case/internal/patrol"
)

// Vars exposes a report to an expectation.
func Vars(r *patrol.Report) map[string]any {
	return map[string]any{
		"visited":    r.Visited,
		"loops":      r.LoopCount,
		"terminal_x": r.Terminal.Position.X,
		"terminal_y": r.Terminal.Position.Y,
		"facing":     r.Terminal.Facing.String(),
		"outcome":    string(r.Outcome),
		"mode":       string(r.Mode),
	}
}

// Asserter checks expectations against reports, compiling each distinct
// expression once.
type Asserter struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func NewAsserter() *Asserter {
	return &Asserter{programs: map[string]*vm.Program{}}
}

func (a *Asserter) Check(cond string, r *patrol.Report) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return true, nil
	}
	vars := Vars(r)

	a.mu.RLock()
	program, ok := a.programs[cond]
	a.mu.RUnlock()
	if !ok {
		var err error
		program, err = compile(cond, vars)
		if err != nil {
			return false, err
		}
		a.mu.Lock()
		a.programs[cond] = program
		a.mu.Unlock()
	}
	return run(program, vars)
}
