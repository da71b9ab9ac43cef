// Package expr implements the complex expression pipeline: tokenizing infix
// text, reordering it to postfix with the shunting-yard algorithm and
// reducing the postfix sequence to a single complex value.
package expr

import "github.com/lemonberrylabs/complex-shell/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Arithmetic
	TokenPlus     TokenType = iota // +
	TokenMinus                     // -
	TokenMultiply                  // *
	TokenDivide                    // /
	TokenPower                     // ^

	// Structure
	TokenLParen      // (
	TokenRParen      // )
	TokenComma       // ,
	TokenOpenVector  // [
	TokenCloseVector // ]
	TokenConjugate   // ~
	TokenTranspose   // `

	// Operands
	TokenFunction // name(args)
	TokenComplex  // complex number literal
)

// Token represents a single lexical token.
type Token struct {
	Type  TokenType
	Value types.Complex // for TokenComplex
	Name  string        // function name (for TokenFunction)
	Args  string        // raw argument text between the call's parentheses (for TokenFunction)
	Pos   int           // character offset in source
}

// ComplexToken wraps a value as a TokenComplex.
func ComplexToken(c types.Complex) Token {
	return Token{Type: TokenComplex, Value: c, Pos: types.NoPosition}
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenMultiply:
		return "MULTIPLY"
	case TokenDivide:
		return "DIVIDE"
	case TokenPower:
		return "POWER"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenComma:
		return "COMMA"
	case TokenOpenVector:
		return "OPENVECTOR"
	case TokenCloseVector:
		return "CLOSEVECTOR"
	case TokenConjugate:
		return "CONJUGATE"
	case TokenTranspose:
		return "TRANSPOSE"
	case TokenFunction:
		return "FUNCTION"
	case TokenComplex:
		return "COMPLEX"
	default:
		return "UNKNOWN"
	}
}

// Symbol returns the source text of a punctuation or operator token type.
func (t TokenType) Symbol() string {
	switch t {
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenMultiply:
		return "*"
	case TokenDivide:
		return "/"
	case TokenPower:
		return "^"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	case TokenOpenVector:
		return "["
	case TokenCloseVector:
		return "]"
	case TokenConjugate:
		return "~"
	case TokenTranspose:
		return "`"
	default:
		return t.String()
	}
}

// String renders the token as it would appear in an expression: literals in
// bracket form, functions as name(args), everything else as its symbol.
func (t Token) String() string {
	switch t.Type {
	case TokenComplex:
		return t.Value.String()
	case TokenFunction:
		return t.Name + "(" + t.Args + ")"
	default:
		return t.Type.Symbol()
	}
}

// symbolTokens maps single-character operators and punctuation to token types.
var symbolTokens = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMultiply,
	'/': TokenDivide,
	'^': TokenPower,
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
	'[': TokenOpenVector,
	']': TokenCloseVector,
	'~': TokenConjugate,
	'`': TokenTranspose,
}

// isBinary reports whether t takes two complex operands.
func isBinary(t TokenType) bool {
	switch t {
	case TokenPlus, TokenMinus, TokenMultiply, TokenDivide, TokenPower:
		return true
	}
	return false
}

// isReserved reports whether t is recognised syntax without evaluation rules.
func isReserved(t TokenType) bool {
	switch t {
	case TokenOpenVector, TokenCloseVector, TokenConjugate, TokenTranspose:
		return true
	}
	return false
}

// precedence returns the binding strength used by the shunting-yard stage.
// Higher binds tighter.
func precedence(t TokenType) int {
	switch t {
	case TokenPlus, TokenMinus:
		return 1
	case TokenMultiply, TokenDivide:
		return 2
	case TokenPower:
		return 3
	default:
		return 0
	}
}

// leftAssociative reports whether operators of equal precedence group from
// the left. Power groups from the right.
func leftAssociative(t TokenType) bool {
	switch t {
	case TokenPlus, TokenMinus, TokenMultiply, TokenDivide:
		return true
	}
	return false
}

// Join renders a token sequence separated by single spaces.
func Join(tokens []Token) string {
	out := make([]byte, 0, len(tokens)*4)
	for i, tok := range tokens {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, tok.String()...)
	}
	return string(out)
}
