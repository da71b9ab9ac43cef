// Package literal parses single complex-number literals.
//
// Three grammars are recognised:
//
//	{re, im}        bracket form
//	@{r, theta}     polar form, angle in radians
//	a, bi, a+bi     standard form, optionally wrapped in braces
package literal

import (
	"math"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// Sentinels standing in for exponent signs while the standard form is split
// into terms, so that "1e-7" is not mistaken for a subtraction.
const (
	expMinus = "eM"
	expPlus  = "eP"
)

// Parse converts s into a complex number. No partial result is returned on
// failure.
func Parse(s string) (types.Complex, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "@") {
		if c, ok := parsePolar(s); ok {
			return c, nil
		}
		return types.Zero, types.NewLiteralParseError(s)
	}
	if c, ok := parseBracket(s); ok {
		return c, nil
	}
	if c, ok := parseStandard(s); ok {
		return c, nil
	}
	return types.Zero, types.NewLiteralParseError(s)
}

// parseBracket parses the bracketed form {a, b}.
func parseBracket(s string) (types.Complex, bool) {
	re, im, ok := pair(s)
	if !ok {
		return types.Zero, false
	}
	return types.NewComplex(re, im), true
}

// parsePolar parses @{r, theta}.
func parsePolar(s string) (types.Complex, bool) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "@")
	if !ok {
		return types.Zero, false
	}
	r, theta, ok := pair(body)
	if !ok {
		return types.Zero, false
	}
	return types.FromPolar(r, theta)
}

// pair reads exactly two comma-separated numbers between braces.
func pair(s string) (float64, float64, bool) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), "{")
	if !ok {
		return 0, 0, false
	}
	body, ok = strings.CutSuffix(body, "}")
	if !ok {
		return 0, 0, false
	}
	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, ok := number(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	b, ok := number(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

// parseStandard parses a + bi where either term may be omitted and either
// may use exponent notation, e.g. "-1.2e-7 - 3.0e-10i".
func parseStandard(s string) (types.Complex, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = s[1 : len(s)-1]
	}

	// Drop whitespace and put a single space before every sign that
	// separates terms. Exponent signs are protected by the sentinels.
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "e-", expMinus)
	s = strings.ReplaceAll(s, "e+", expPlus)

	var sb strings.Builder
	for _, ch := range s {
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		case ch == '+' || ch == '-':
			sb.WriteByte(' ')
			sb.WriteRune(ch)
		default:
			sb.WriteRune(ch)
		}
	}
	// a + -bi
	cleaned := strings.ReplaceAll(sb.String(), "+ -", "-")

	parts := strings.Fields(cleaned)
	switch len(parts) {
	case 1:
		if strings.Contains(parts[0], "i") {
			im, ok := imaginaryTerm(parts[0])
			return types.NewComplex(0, im), ok
		}
		re, ok := realTerm(parts[0])
		return types.NewComplex(re, 0), ok
	case 2:
		re, ok := realTerm(parts[0])
		if !ok {
			return types.Zero, false
		}
		im, ok := imaginaryTerm(parts[1])
		if !ok {
			return types.Zero, false
		}
		return types.NewComplex(re, im), true
	}
	return types.Zero, false
}

// imaginaryTerm parses a term ending in i, including the bare i, +i and -i.
func imaginaryTerm(s string) (float64, bool) {
	switch s {
	case "i", "+i":
		return 1, true
	case "-i":
		return -1, true
	}
	coeff, ok := strings.CutSuffix(s, "i")
	if !ok {
		return 0, false
	}
	return realTerm(coeff)
}

// realTerm parses a term after restoring its exponent signs.
func realTerm(s string) (float64, bool) {
	s = strings.ReplaceAll(s, expMinus, "e-")
	s = strings.ReplaceAll(s, expPlus, "e+")
	return number(s)
}

// number parses a finite decimal number. Infinities, NaN and hexadecimal
// floats are rejected.
func number(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
