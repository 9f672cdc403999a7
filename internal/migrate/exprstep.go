package migrate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprStep builds a StepFunc from an expr-lang expression, for migration
// steps that are simple enough to state declaratively: field renames,
// added defaults, small reshapes. The payload is bound as "data" and the
// expression must produce a map.
//
//	migrate.ExprStep(`{"id": data.id, "title": data.name, "done": false}`)
//
// The expression compiles once; a compile failure is reported by every
// invocation of the returned step, which keeps the builder API fluent and
// surfaces the failure with full version context on first use.
func ExprStep(src string) StepFunc {
	program, compileErr := expr.Compile(src)
	return func(payload map[string]any) (map[string]any, error) {
		if compileErr != nil {
			return nil, fmt.Errorf("compiling step expression: %w", compileErr)
		}
		return runExprStep(program, payload)
	}
}

func runExprStep(program *vm.Program, payload map[string]any) (map[string]any, error) {
	out, err := expr.Run(program, map[string]any{"data": payload})
	if err != nil {
		return nil, fmt.Errorf("evaluating step expression: %w", err)
	}

	result, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("step expression produced %T, want an object", out)
	}
	return result, nil
}
