// internal/patrol/expect/eval.go
package expect

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Eval reports whether cond holds for vars. An empty cond holds.
func Eval(cond string, vars map[string]any) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return true, nil
	}

	program, err := compile(cond, vars)
	if err != nil {
		return false, err
	}
	return run(program, vars)
}

func compile(cond string, env map[string]any) (*vm.Program, error) {
	if err := Validate(cond); err != nil {
		return nil, err
	}
	program, err := expr.Compile(cond, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", cond, err)
	}
	return program, nil
}

func run(program *vm.Program, vars map[string]any) (bool, error) {
	out, err := expr.Run(program, vars)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expectation must evaluate to bool (got %T)", out)
	}
	return b, nil
}
