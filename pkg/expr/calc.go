package expr

import (
	"fmt"

	"github.com/lemonberrylabs/complex-shell/pkg/format"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// MaxExpressionLength is the maximum allowed length for a single expression.
const MaxExpressionLength = 400

// MaxBudget bounds the magnitude and precision a caller may request.
const MaxBudget = 64

// CheckLength rejects input longer than MaxExpressionLength.
func CheckLength(input string) error {
	if len(input) > MaxExpressionLength {
		return types.NewResourceLimitError(
			fmt.Sprintf("expression exceeds maximum length of %d characters", MaxExpressionLength))
	}
	return nil
}

// CheckBudget rejects a magnitude or precision outside [0, MaxBudget].
func CheckBudget(name string, n int) error {
	if n < 0 || n > MaxBudget {
		return fmt.Errorf("%s must be between 0 and %d", name, MaxBudget)
	}
	return nil
}

// Calculator runs text through the tokenize, reorder and evaluate stages.
// It holds no state between calls and is safe for concurrent use.
type Calculator struct {
	// Functions resolves function calls. Nil disables them.
	Functions FunctionRegistry
	// Magnitude and Precision are the display budgets passed to the
	// numeric formatter.
	Magnitude int
	Precision int
	// Polar renders results as @{modulus, angle}.
	Polar bool
}

// NewCalculator creates a calculator with the default display budgets.
func NewCalculator(funcs FunctionRegistry) *Calculator {
	return &Calculator{
		Functions: funcs,
		Magnitude: format.DefaultMagnitude,
		Precision: format.DefaultPrecision,
	}
}

// Trace records the intermediate stages of one evaluation.
type Trace struct {
	Tokens  []Token
	Postfix []Token
	Result  types.Complex
}

// Eval evaluates an expression.
func (c *Calculator) Eval(input string) (types.Complex, error) {
	t, err := c.Trace(input)
	if err != nil {
		return types.Zero, err
	}
	return t.Result, nil
}

// EvalString evaluates an expression and formats the result.
func (c *Calculator) EvalString(input string) (string, error) {
	v, err := c.Eval(input)
	if err != nil {
		return "", err
	}
	return c.Format(v), nil
}

// Trace evaluates an expression and returns every intermediate stage. On
// failure the stages reached so far are returned alongside the error.
func (c *Calculator) Trace(input string) (*Trace, error) {
	if err := CheckLength(input); err != nil {
		return nil, err
	}

	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	t := &Trace{Tokens: tokens, Postfix: Reorder(tokens)}

	// Evaluate consumes its input; keep the recorded postfix intact.
	work := make([]Token, len(t.Postfix))
	copy(work, t.Postfix)
	v, err := Evaluate(work, c.Functions)
	if err != nil {
		return t, err
	}
	t.Result = v
	return t, nil
}

// Format renders a value with the calculator's display settings.
func (c *Calculator) Format(v types.Complex) string {
	if c.Polar {
		return v.PolarString(c.Magnitude, c.Precision)
	}
	return v.Format(c.Magnitude, c.Precision)
}
