package expr

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// MaxCallDepth is the maximum nesting of function calls within arguments.
const MaxCallDepth = 20

// FunctionRegistry resolves named functions for expression evaluation.
type FunctionRegistry interface {
	// CallFunction calls a named function with the given arguments.
	CallFunction(name string, args []types.Complex) (types.Complex, error)
}

// Evaluate reduces a postfix token sequence to a single complex value. The
// sequence is consumed: it is shrunk in place as operators are applied, so
// callers must not reuse it. funcs may be nil, in which case any function
// call fails.
func Evaluate(postfix []Token, funcs FunctionRegistry) (types.Complex, error) {
	ev := &evaluator{funcs: funcs}
	return ev.reduce(postfix)
}

type evaluator struct {
	funcs FunctionRegistry
	depth int
}

// reduce repeatedly finds the leftmost operator, applies it to the two
// tokens before it and splices the result in their place, restarting the
// scan from the beginning each time.
func (ev *evaluator) reduce(tokens []Token) (types.Complex, error) {
	if len(tokens) == 0 {
		return types.Zero, types.NewEvaluationError("empty expression")
	}

	for len(tokens) > 1 {
		i, err := ev.nextOperator(tokens)
		if err != nil {
			return types.Zero, err
		}
		if i < 0 {
			return types.Zero, types.NewEvaluationError("expected a single complex-number result")
		}
		if i < 2 {
			return types.Zero, types.NewEvaluationError(
				fmt.Sprintf("need two operands for %s", tokens[i].Type.Symbol()))
		}

		left, err := operand(tokens[i-2])
		if err != nil {
			return types.Zero, err
		}
		right, err := operand(tokens[i-1])
		if err != nil {
			return types.Zero, err
		}
		result, err := applyBinary(tokens[i].Type, left, right)
		if err != nil {
			return types.Zero, err
		}

		tokens[i-2] = ComplexToken(result)
		tokens = append(tokens[:i-1], tokens[i+1:]...)
	}

	if tokens[0].Type == TokenFunction {
		if err := ev.resolve(tokens, 0); err != nil {
			return types.Zero, err
		}
	}
	if tokens[0].Type != TokenComplex {
		return types.Zero, types.NewEvaluationError("expected a single complex-number result")
	}
	return tokens[0].Value, nil
}

// nextOperator returns the index of the leftmost binary operator, or -1 if
// there is none. Function calls met along the way are resolved in place.
func (ev *evaluator) nextOperator(tokens []Token) (int, error) {
	for i, tok := range tokens {
		switch {
		case tok.Type == TokenFunction:
			if err := ev.resolve(tokens, i); err != nil {
				return -1, err
			}
		case isBinary(tok.Type):
			return i, nil
		case isReserved(tok.Type):
			return -1, types.NewEvaluationError(
				fmt.Sprintf("operator %s is reserved and not supported", tok.Type.Symbol()))
		}
	}
	return -1, nil
}

// resolve evaluates the function token at index i and replaces it with its
// value.
func (ev *evaluator) resolve(tokens []Token, i int) error {
	tok := tokens[i]
	if ev.funcs == nil {
		return types.NewUnknownFunctionError(tok.Name)
	}
	if ev.depth >= MaxCallDepth {
		return types.NewResourceLimitError(
			fmt.Sprintf("function call nesting exceeds %d levels", MaxCallDepth))
	}

	args := splitArgs(tok.Args)
	values := make([]types.Complex, len(args))
	for j, arg := range args {
		v, err := ev.evalText(arg)
		if err != nil {
			return fmt.Errorf("argument %d of %s: %w", j+1, tok.Name, err)
		}
		values[j] = v
	}

	v, err := ev.funcs.CallFunction(tok.Name, values)
	if err != nil {
		return err
	}
	tokens[i] = ComplexToken(v)
	return nil
}

// evalText runs an argument through the whole pipeline one call level down.
func (ev *evaluator) evalText(text string) (types.Complex, error) {
	tokens, err := Tokenize(text)
	if err != nil {
		return types.Zero, err
	}
	ev.depth++
	defer func() { ev.depth-- }()
	return ev.reduce(Reorder(tokens))
}

func operand(tok Token) (types.Complex, error) {
	if tok.Type != TokenComplex {
		return types.Zero, types.NewEvaluationError(
			fmt.Sprintf("operand %s is not a complex number", tok))
	}
	return tok.Value, nil
}

// applyBinary applies a binary operator. Power uses the real component of
// the right operand as the exponent.
func applyBinary(op TokenType, left, right types.Complex) (types.Complex, error) {
	var (
		result types.Complex
		ok     bool
		verb   string
	)
	switch op {
	case TokenPlus:
		result, ok = left.Add(right)
		verb = "add"
	case TokenMinus:
		result, ok = left.Sub(right)
		verb = "subtract"
	case TokenMultiply:
		result, ok = left.Mul(right)
		verb = "multiply"
	case TokenDivide:
		result, ok = left.Div(right)
		verb = "divide"
	case TokenPower:
		result, ok = left.Pow(right.Re)
		verb = "raise"
	default:
		panic(fmt.Sprintf("expr: impossible operator %s", op))
	}
	if !ok {
		return types.Zero, types.NewArithmeticError(
			fmt.Sprintf("could not %s %s and %s: result is not finite", verb, left, right))
	}
	return result, nil
}

// splitArgs splits raw argument text on commas that are not nested inside
// parentheses, braces or brackets.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth := 0
	start := 0
	for i, ch := range s {
		switch ch {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}
