package expr

import (
	"strings"
	"testing"

	"github.com/lemonberrylabs/complex-shell/pkg/stdlib"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

func TestCalculatorEvalString(t *testing.T) {
	calc := NewCalculator(stdlib.NewRegistry())

	tests := []struct {
		input string
		want  string
	}{
		{"{2} + {i}", "{2 + i}"},
		{"{i} * {i}", "{-1}"},
		{"{4 + 2i} / {3 - i}", "{1 + i}"},
		{"{3 + i} - {1 - i}", "{2 + 2i}"},
		{"abs({3, 4}) + {1}", "{6}"},
		{"conj({1, 2}) * {2}", "{2 - 4i}"},
		{"sqrt({-4})", "{2i}"},
		{"re({7, 8}) + im({7, 8})", "{15}"},
		{"{1} / {3}", "{0.333333}"},
		{"{1e20} * {3}", "{3e20}"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := calc.EvalString(tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculatorBudgets(t *testing.T) {
	calc := NewCalculator(nil)
	calc.Precision = 2
	got, err := calc.EvalString("{1} / {3}")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got != "{0.33}" {
		t.Errorf("got %s, want {0.33}", got)
	}

	calc.Polar = true
	got, err = calc.EvalString("{0, 2}")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got != "@{2, 1.57}" {
		t.Errorf("got %s, want @{2, 1.57}", got)
	}
}

func TestCalculatorTrace(t *testing.T) {
	calc := NewCalculator(nil)
	tr, err := calc.Trace("{1} + {2} * {3}")
	if err != nil {
		t.Fatalf("trace error: %v", err)
	}
	if got := Join(tr.Tokens); got != "{1} + {2} * {3}" {
		t.Errorf("tokens: got %q", got)
	}
	if got := Join(tr.Postfix); got != "{1} {2} {3} * +" {
		t.Errorf("postfix: got %q", got)
	}
	if tr.Result != types.NewComplex(7, 0) {
		t.Errorf("result: got %v", tr.Result)
	}
}

func TestCalculatorTracePartialOnFailure(t *testing.T) {
	calc := NewCalculator(nil)
	tr, err := calc.Trace("{1} / {0}")
	if types.KindOf(err) != types.KindArithmeticError {
		t.Fatalf("expected arithmetic error, got %v", err)
	}
	if tr == nil || Join(tr.Postfix) != "{1} {0} /" {
		t.Errorf("expected postfix stage to be reported, got %+v", tr)
	}
}

func TestCalculatorMaxLength(t *testing.T) {
	calc := NewCalculator(nil)
	_, err := calc.Eval(strings.Repeat("{1} + ", MaxExpressionLength) + "{1}")
	if types.KindOf(err) != types.KindResourceLimitError {
		t.Errorf("expected resource limit error, got %v", err)
	}
}

func TestCheckBudget(t *testing.T) {
	for _, n := range []int{0, 6, MaxBudget} {
		if err := CheckBudget("precision", n); err != nil {
			t.Errorf("%d: unexpected error %v", n, err)
		}
	}
	for _, n := range []int{-1, MaxBudget + 1} {
		if err := CheckBudget("precision", n); err == nil {
			t.Errorf("%d: expected error", n)
		}
	}
}
