package types

import (
	"errors"
	"fmt"
)

// Error kind constants reported by the expression pipeline.
const (
	KindLiteralParseError  = "LiteralParseError"
	KindTokenizeError      = "TokenizeError"
	KindArithmeticError    = "ArithmeticError"
	KindEvaluationError    = "EvaluationError"
	KindUnknownFunction    = "UnknownFunctionError"
	KindResourceLimitError = "ResourceLimitError"
)

// NoPosition marks an error that is not tied to a character offset.
const NoPosition = -1

// CalcError is an error raised while parsing or evaluating an expression.
type CalcError struct {
	Message string
	Kind    string
	Pos     int // character offset in the input, or NoPosition
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	return e.Message
}

// HasKind returns true if the error is of the given kind.
func (e *CalcError) HasKind(kind string) bool {
	return e.Kind == kind
}

// KindOf returns the kind of the first CalcError in err's chain, or the
// empty string if there is none.
func KindOf(err error) string {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// PositionOf returns the position of the first CalcError in err's chain, or
// NoPosition.
func PositionOf(err error) int {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Pos
	}
	return NoPosition
}

// Common error constructors.

// NewLiteralParseError creates a LiteralParseError for text that matches no
// literal grammar.
func NewLiteralParseError(text string) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("cannot parse '%s' to a complex number", text),
		Kind:    KindLiteralParseError,
		Pos:     NoPosition,
	}
}

// NewTokenizeError creates a TokenizeError at the given position.
func NewTokenizeError(msg string, pos int) *CalcError {
	return &CalcError{Message: msg, Kind: KindTokenizeError, Pos: pos}
}

// NewArithmeticError creates an ArithmeticError for a non-finite result.
func NewArithmeticError(msg string) *CalcError {
	return &CalcError{Message: msg, Kind: KindArithmeticError, Pos: NoPosition}
}

// NewEvaluationError creates an EvaluationError for a malformed postfix sequence.
func NewEvaluationError(msg string) *CalcError {
	return &CalcError{Message: msg, Kind: KindEvaluationError, Pos: NoPosition}
}

// NewUnknownFunctionError creates an UnknownFunctionError.
func NewUnknownFunctionError(name string) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("unknown function '%s'", name),
		Kind:    KindUnknownFunction,
		Pos:     NoPosition,
	}
}

// NewResourceLimitError creates a ResourceLimitError.
func NewResourceLimitError(msg string) *CalcError {
	return &CalcError{Message: msg, Kind: KindResourceLimitError, Pos: NoPosition}
}
