package expr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lemonberrylabs/complex-shell/pkg/literal"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// scanState is the lexer's capture mode. Exactly one is active at a time.
type scanState int

const (
	scanNormal   scanState = iota
	scanLiteral            // inside {...} or @{...}
	scanFuncName           // identifier or bare number before (
	scanFuncArgs           // between a function's parentheses
)

// Lexer tokenizes a complex expression string in a single left-to-right
// pass. Every character is consumed exactly once.
type Lexer struct {
	input  string
	state  scanState
	buf    strings.Builder
	start  int    // position where the buffered text began
	name   string // function name while capturing arguments
	depth  int    // parenthesis nesting while capturing arguments
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is shorthand for NewLexer(input).Tokenize().
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the entire input and returns all tokens. Positions count
// characters, not bytes.
func (l *Lexer) Tokenize() ([]Token, error) {
	pos := -1
	for _, ch := range l.input {
		pos++
		var err error
		switch l.state {
		case scanNormal:
			l.normal(ch, pos)
		case scanLiteral:
			err = l.literal(ch)
		case scanFuncName:
			err = l.funcName(ch, pos)
		case scanFuncArgs:
			l.funcArgs(ch)
		}
		if err != nil {
			return nil, err
		}
	}

	switch l.state {
	case scanFuncArgs:
		return nil, types.NewTokenizeError(
			fmt.Sprintf("missing ')' for function '%s' starting at position %d", l.name, l.start), l.start)
	case scanLiteral, scanFuncName:
		if err := l.flushLiteral(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *Lexer) normal(ch rune, pos int) {
	switch {
	case ch == '{' || ch == '@':
		l.begin(scanLiteral, ch, pos)
	case unicode.IsSpace(ch):
	default:
		if tt, ok := symbolTokens[ch]; ok {
			l.tokens = append(l.tokens, Token{Type: tt, Pos: pos})
			return
		}
		l.begin(scanFuncName, ch, pos)
	}
}

func (l *Lexer) literal(ch rune) error {
	l.buf.WriteRune(ch)
	if ch == '}' {
		return l.flushLiteral()
	}
	return nil
}

func (l *Lexer) funcName(ch rune, pos int) error {
	switch {
	case ch == '(':
		l.name = l.buf.String()
		l.buf.Reset()
		l.depth = 1
		l.state = scanFuncArgs
	case unicode.IsSpace(ch):
	case (ch == '+' || ch == '-') && l.inExponent():
		l.buf.WriteRune(ch)
	case ch == '{' || ch == '@' || isSymbol(ch):
		// A bare literal such as 2 or 3i ends at the next operator.
		if err := l.flushLiteral(); err != nil {
			return err
		}
		l.normal(ch, pos)
	default:
		l.buf.WriteRune(ch)
	}
	return nil
}

func (l *Lexer) funcArgs(ch rune) {
	switch ch {
	case '(':
		l.depth++
	case ')':
		l.depth--
		if l.depth == 0 {
			l.tokens = append(l.tokens, Token{Type: TokenFunction, Name: l.name, Args: l.buf.String(), Pos: l.start})
			l.reset()
			return
		}
	}
	l.buf.WriteRune(ch)
}

// begin switches to a capture state with ch as the first buffered rune.
func (l *Lexer) begin(state scanState, ch rune, pos int) {
	l.state = state
	l.start = pos
	l.buf.WriteRune(ch)
}

func (l *Lexer) reset() {
	l.state = scanNormal
	l.buf.Reset()
	l.name = ""
	l.depth = 0
}

// flushLiteral hands the buffered text to the literal parser and emits the
// resulting complex number.
func (l *Lexer) flushLiteral() error {
	text := l.buf.String()
	start := l.start
	l.reset()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c, err := literal.Parse(text)
	if err != nil {
		return types.NewTokenizeError(fmt.Sprintf("%v at position %d", err, start), start)
	}
	l.tokens = append(l.tokens, Token{Type: TokenComplex, Value: c, Pos: start})
	return nil
}

// inExponent reports whether the buffer holds a number whose last character
// is an exponent marker, so a following sign belongs to the number.
func (l *Lexer) inExponent() bool {
	s := l.buf.String()
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	if last != 'e' && last != 'E' {
		return false
	}
	first := s[0]
	return (first >= '0' && first <= '9') || first == '.'
}

func isSymbol(ch rune) bool {
	_, ok := symbolTokens[ch]
	return ok
}
