package stdlib

import (
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// registerComponentHelpers registers functions that pick apart or rearrange
// the components of a value: re, im, abs, arg, conj, neg.
func (r *Registry) registerComponentHelpers() {
	r.Register("re", stdRe)
	r.Register("im", stdIm)
	r.Register("abs", stdAbs)
	r.Register("arg", stdArg)
	r.Register("conj", stdConj)
	r.Register("neg", stdNeg)
}

func stdRe(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("re", args, 1); err != nil {
		return types.Zero, err
	}
	return types.NewComplex(args[0].Re, 0), nil
}

func stdIm(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("im", args, 1); err != nil {
		return types.Zero, err
	}
	return types.NewComplex(args[0].Im, 0), nil
}

func stdAbs(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("abs", args, 1); err != nil {
		return types.Zero, err
	}
	return finiteResult("abs", complex(args[0].Polar().Modulus, 0))
}

func stdArg(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("arg", args, 1); err != nil {
		return types.Zero, err
	}
	return types.NewComplex(args[0].Polar().Angle, 0), nil
}

func stdConj(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("conj", args, 1); err != nil {
		return types.Zero, err
	}
	return types.NewComplex(args[0].Re, -args[0].Im), nil
}

func stdNeg(args []types.Complex) (types.Complex, error) {
	if err := requireArgs("neg", args, 1); err != nil {
		return types.Zero, err
	}
	return types.NewComplex(-args[0].Re, -args[0].Im), nil
}
