// Package types defines the complex value type shared by every stage of the
// expression pipeline, together with the error kinds the pipeline reports.
package types

import (
	"math"
	"strings"

	"github.com/lemonberrylabs/complex-shell/pkg/format"
)

// Complex is a complex number with double-precision components. Values
// produced by arithmetic are always finite; an operation whose result would
// contain NaN or an infinity reports failure instead.
type Complex struct {
	Re float64
	Im float64
}

// Polar is the modulus/angle form of a complex number. Angle is in radians
// within (-π, π].
type Polar struct {
	Modulus float64
	Angle   float64
}

// Common values.
var (
	Zero   = Complex{}
	One    = Complex{Re: 1}
	I      = Complex{Im: 1}
	MinusI = Complex{Im: -1}
)

// NewComplex returns re + im·i.
func NewComplex(re, im float64) Complex {
	return Complex{Re: re, Im: im}
}

// FromComplex128 converts a builtin complex128, reporting false when either
// component is not finite.
func FromComplex128(z complex128) (Complex, bool) {
	return finite(real(z), imag(z))
}

// FromPolar builds a complex number from a modulus and an angle in radians.
func FromPolar(modulus, angle float64) (Complex, bool) {
	sin, cos := math.Sincos(angle)
	return finite(modulus*cos, modulus*sin)
}

// Complex128 returns c as a builtin complex128.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}

// IsFinite reports whether both components are finite.
func (c Complex) IsFinite() bool {
	return isFinite(c.Re) && isFinite(c.Im)
}

// Add returns a + b. It fails if either component overflows.
func (a Complex) Add(b Complex) (Complex, bool) {
	re := a.Re + b.Re
	if !isFinite(re) {
		return Zero, false
	}
	im := a.Im + b.Im
	if !isFinite(im) {
		return Zero, false
	}
	return Complex{Re: re, Im: im}, true
}

// Sub returns a - b. It fails if either component overflows.
func (a Complex) Sub(b Complex) (Complex, bool) {
	re := a.Re - b.Re
	if !isFinite(re) {
		return Zero, false
	}
	im := a.Im - b.Im
	if !isFinite(im) {
		return Zero, false
	}
	return Complex{Re: re, Im: im}, true
}

// Mul returns a * b.
func (a Complex) Mul(b Complex) (Complex, bool) {
	re := a.Re*b.Re - a.Im*b.Im
	im := a.Re*b.Im + b.Re*a.Im
	return finite(re, im)
}

// Div returns a / b using
//
//	a₁ + b₁i    a₁a₂ + b₁b₂   a₂b₁ - a₁b₂
//	-------- = ----------- + ----------- i
//	a₂ + b₂i    a₂² + b₂²     a₂² + b₂²
//
// Division by zero yields non-finite components and therefore fails.
func (a Complex) Div(b Complex) (Complex, bool) {
	denom := b.Re*b.Re + b.Im*b.Im
	re := (a.Re*b.Re + a.Im*b.Im) / denom
	im := (b.Re*a.Im - a.Re*b.Im) / denom
	return finite(re, im)
}

// Pow raises c to a real exponent through its polar form.
func (c Complex) Pow(exp float64) (Complex, bool) {
	p := c.Polar()
	return FromPolar(math.Pow(p.Modulus, exp), p.Angle*exp)
}

// Polar converts c to modulus/angle form. The zero value maps to (0, 0).
func (c Complex) Polar() Polar {
	r := math.Hypot(c.Re, c.Im)
	if r == 0 {
		return Polar{}
	}
	theta := math.Atan2(c.Im, c.Re)
	if theta == -math.Pi {
		theta = math.Pi
	}
	return Polar{Modulus: r, Angle: theta}
}

// String renders c in bracket form with the default format budgets.
func (c Complex) String() string {
	return c.Format(format.DefaultMagnitude, format.DefaultPrecision)
}

// Format renders c as {re}, {im i} or {re ± im i}, formatting each
// component with the given magnitude and precision budgets.
func (c Complex) Format(magnitude, precision int) string {
	num := func(f float64) string { return format.Float(f, magnitude, precision) }
	imag := func(f float64) string {
		s := num(f)
		switch s {
		case "1":
			return "i"
		case "-1":
			return "-i"
		}
		return s + "i"
	}

	var sb strings.Builder
	sb.WriteByte('{')
	switch {
	case c.Im == 0:
		sb.WriteString(num(c.Re))
	case c.Re == 0:
		sb.WriteString(imag(c.Im))
	case c.Im < 0:
		sb.WriteString(num(c.Re) + " - " + imag(-c.Im))
	default:
		sb.WriteString(num(c.Re) + " + " + imag(c.Im))
	}
	sb.WriteByte('}')
	return sb.String()
}

// PolarString renders c as @{modulus, angle}.
func (c Complex) PolarString(magnitude, precision int) string {
	p := c.Polar()
	return "@{" + format.Float(p.Modulus, magnitude, precision) + ", " +
		format.Float(p.Angle, magnitude, precision) + "}"
}

func finite(re, im float64) (Complex, bool) {
	if !isFinite(re) || !isFinite(im) {
		return Zero, false
	}
	return Complex{Re: re, Im: im}, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
