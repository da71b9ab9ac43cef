package stdlib

import (
	"math/cmplx"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// registerMath registers the transcendental functions.
func (r *Registry) registerMath() {
	r.Register("sqrt", unary("sqrt", cmplx.Sqrt))
	r.Register("exp", unary("exp", cmplx.Exp))
	r.Register("ln", unary("ln", cmplx.Log))
	r.Register("sin", unary("sin", cmplx.Sin))
	r.Register("cos", unary("cos", cmplx.Cos))
	r.Register("tan", unary("tan", cmplx.Tan))
	r.Register("pow", mathPow)
	r.Register("polar", mathPolar)
}

// unary adapts a complex128 function to a one-argument StdlibFunc.
func unary(name string, fn func(complex128) complex128) StdlibFunc {
	return func(args []types.Complex) (types.Complex, error) {
		if err := requireArgs(name, args, 1); err != nil {
			return types.Zero, err
		}
		return finiteResult(name, fn(args[0].Complex128()))
	}
}

// mathPow raises its first argument to a complex power.
func mathPow(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("pow", args, 2); err != nil {
		return types.Zero, err
	}
	return finiteResult("pow", cmplx.Pow(args[0].Complex128(), args[1].Complex128()))
}

// mathPolar builds a value from a modulus and an angle, using the real
// component of each argument.
func mathPolar(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("polar", args, 2); err != nil {
		return types.Zero, err
	}
	return finiteResult("polar", cmplx.Rect(args[0].Re, args[1].Re))
}
