// Package format renders floating-point numbers for display, switching
// between fixed-point and exponential notation based on magnitude and
// precision budgets.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Default budgets used when a caller does not supply its own.
const (
	DefaultMagnitude = 12
	DefaultPrecision = 6
)

// Float renders f with at most maxPrecision fractional digits.
//
// Fixed-point notation is used when the digit magnitude of f fits within
// maxMagnitude, except for values below 1 in absolute value whose leading
// zeros would be rounded away by maxPrecision. Everything else falls back to
// exponential notation, so 0.00005 prints as "5e-5" with a precision of 3
// and as "0.00005" with a precision of 5.
func Float(f float64, maxMagnitude, maxPrecision int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == 0 {
		// Drops the sign of negative zero.
		f = 0
	}
	if maxPrecision < 0 {
		maxPrecision = 0
	}

	magn := digitMagnitude(f)
	if magn <= maxMagnitude && !(math.Abs(f) < 1 && maxPrecision < magn) {
		return trimFraction(strconv.FormatFloat(f, 'f', maxPrecision, 64))
	}

	s := strconv.FormatFloat(f, 'e', maxPrecision, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return trimFraction(mantissa) + "e" + strconv.Itoa(e)
}

// trimFraction removes trailing zeros and a dangling decimal point from a
// rendered number. Integers without a fraction are returned unchanged.
func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// digitMagnitude returns the number of digits before the decimal point.
// Zero counts as 1. For values below 1 in absolute value it is the number of
// zeros before the first significant digit plus 1. A negative sign adds 1.
//
//	0.0               -> 1
//	9.99              -> 1
//	-1000.3           -> 5
//	-0.00000000001    -> 12
func digitMagnitude(f float64) int {
	if f == 0 {
		return 1
	}
	neg := 0
	if f < 0 {
		neg = 1
	}
	m := decimalExponent(math.Abs(f))
	if m >= 0 {
		return m + 1 + neg
	}
	return -m + neg
}

// decimalExponent returns floor(log10(f)) for a positive finite f. It reads
// the exponent of the shortest round-trip representation because
// math.Log10 is inexact for some powers of ten.
func decimalExponent(f float64) int {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	_, exp, _ := strings.Cut(s, "e")
	e, err := strconv.Atoi(exp)
	if err != nil {
		return int(math.Floor(math.Log10(f)))
	}
	return e
}
