// Package stdlib implements the built-in functions available to complex
// expressions.
package stdlib

import (
	"fmt"
	"sort"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// StdlibFunc is a standard library function signature.
type StdlibFunc func(args []types.Complex) (types.Complex, error)

// Registry holds all standard library functions and serves as an
// expr.FunctionRegistry.
type Registry struct {
	funcs map[string]StdlibFunc
}

// NewRegistry creates a new stdlib registry with all built-in functions registered.
func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]StdlibFunc),
	}
	r.registerComponentHelpers()
	r.registerMath()
	return r
}

// CallFunction implements expr.FunctionRegistry.
func (r *Registry) CallFunction(name string, args []types.Complex) (types.Complex, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return types.Zero, types.NewUnknownFunctionError(name)
	}
	return fn(args)
}

// Register adds a function to the registry.
func (r *Registry) Register(name string, fn StdlibFunc) {
	r.funcs[name] = fn
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requireArgs checks that the number of args is exactly n.
func requireArgs(name string, args []types.Complex, n int) error {
	if len(args) != n {
		return types.NewEvaluationError(
			fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args)))
	}
	return nil
}

// finiteResult converts a complex128 result, failing when it is not finite.
func finiteResult(name string, z complex128) (types.Complex, error) {
	c, ok := types.FromComplex128(z)
	if !ok {
		return types.Zero, types.NewArithmeticError(
			fmt.Sprintf("%s: result is not finite", name))
	}
	return c, nil
}
