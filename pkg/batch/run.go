package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// CaseResult is the outcome of running one case.
type CaseResult struct {
	Name   string `json:"name"`
	Expr   string `json:"expr"`
	Passed bool   `json:"passed"`
	Got    string `json:"got,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Report collects the results of a batch run.
type Report struct {
	Results []CaseResult `json:"results"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Write prints one line per case followed by a summary.
func (r *Report) Write(w io.Writer) {
	for _, res := range r.Results {
		if res.Passed {
			fmt.Fprintf(w, "PASS %s\n", res.Name)
			continue
		}
		fmt.Fprintf(w, "FAIL %s: %s\n", res.Name, res.Reason)
	}
	fmt.Fprintf(w, "%d passed, %d failed\n", r.Passed, r.Failed)
}

// Run evaluates every case of f with a copy of calc adjusted by the file's
// format settings. Cancelling ctx stops the run between cases; the report
// then holds the cases completed so far.
func Run(ctx context.Context, calc *expr.Calculator, f *File) (*Report, error) {
	c := *calc
	if f.Format.Magnitude != nil {
		c.Magnitude = *f.Format.Magnitude
	}
	if f.Format.Precision != nil {
		c.Precision = *f.Format.Precision
	}
	if f.Format.Polar {
		c.Polar = true
	}

	report := &Report{}
	for _, tc := range f.Cases {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		res := runCase(&c, tc)
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func runCase(calc *expr.Calculator, tc *Case) CaseResult {
	res := CaseResult{Name: tc.Name, Expr: tc.Expr}

	got, err := calc.EvalString(tc.Expr)
	if err != nil {
		res.Error = err.Error()
		res.Kind = types.KindOf(err)
	} else {
		res.Got = got
	}

	switch {
	case tc.ExpectError != "":
		switch {
		case err == nil:
			res.Reason = fmt.Sprintf("expected %s, got %s", tc.ExpectError, got)
		case res.Kind != tc.ExpectError:
			res.Reason = fmt.Sprintf("expected %s, got %s: %v", tc.ExpectError, kindName(res.Kind), err)
		default:
			res.Passed = true
		}
	case err != nil:
		res.Reason = fmt.Sprintf("unexpected %s: %v", kindName(res.Kind), err)
	case tc.Expect != "" && got != tc.Expect:
		res.Reason = fmt.Sprintf("expected %s, got %s", tc.Expect, got)
	default:
		res.Passed = true
	}
	return res
}

func kindName(kind string) string {
	if kind == "" {
		return "error"
	}
	return kind
}
