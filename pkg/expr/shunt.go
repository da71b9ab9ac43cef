package expr

// Reorder converts an infix token sequence to postfix order using the
// shunting-yard algorithm. It never fails: unmatched parentheses are
// absorbed rather than reported, leaving the evaluator to reject sequences
// that do not reduce to a single value.
//
// Function tokens carry their own argument list, the tokenizer having
// already consumed the call's parentheses, so they are flushed to the output
// as soon as they are pushed and behave like operands.
func Reorder(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	ops := make([]Token, 0, len(tokens)/2)

	for _, tok := range tokens {
		switch tok.Type {
		case TokenComplex:
			out = append(out, tok)
		case TokenFunction:
			ops = append(ops, tok)
			out, ops = flushFunction(out, ops)
		case TokenLParen:
			ops = append(ops, tok)
		case TokenComma:
			for len(ops) > 0 && ops[len(ops)-1].Type != TokenLParen {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
		case TokenRParen:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Type == TokenLParen {
					break
				}
				out = append(out, top)
			}
			out, ops = flushFunction(out, ops)
		default:
			out, ops = pushOperator(out, ops, tok)
		}
	}

	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].Type == TokenLParen {
			continue
		}
		out = append(out, ops[i])
	}
	return out
}

// pushOperator pops operators that bind at least as tightly as op to the
// output, then pushes op.
func pushOperator(out, ops []Token, op Token) ([]Token, []Token) {
	p := precedence(op.Type)
	left := leftAssociative(op.Type)

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		if top.Type == TokenLParen || top.Type == TokenFunction {
			break
		}
		tp := precedence(top.Type)
		if tp > p || (tp == p && left) {
			out = append(out, top)
			ops = ops[:len(ops)-1]
			continue
		}
		break
	}
	return out, append(ops, op)
}

// flushFunction moves a function token on top of the operator stack to the
// output.
func flushFunction(out, ops []Token) ([]Token, []Token) {
	if len(ops) > 0 && ops[len(ops)-1].Type == TokenFunction {
		out = append(out, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	return out, ops
}
