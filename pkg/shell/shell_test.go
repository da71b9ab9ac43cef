package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/stdlib"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
)

func newShell(out io.Writer) *Shell {
	return &Shell{Calc: expr.NewCalculator(stdlib.NewRegistry()), Out: out}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(&out)
	sh.History = store.New(10)

	input := "{2} + {i}\n\n{1} / {0}\nQUIT\n{1}\n"
	if err := sh.Run(context.Background(), NewReader(strings.NewReader(input), &out)); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Complex shell!",
		"c$ Result = {2 + i}",
		"ERROR: could not divide",
		"Bye...",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Result = {1}") {
		t.Error("input after quit should not be evaluated")
	}
	if sh.History.Len() != 2 {
		t.Errorf("expected 2 recorded evaluations, got %d", sh.History.Len())
	}
}

func TestRunEOF(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(&out)

	if err := sh.Run(context.Background(), NewReader(strings.NewReader("{i} * {i}"), &out)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Result = {-1}") || !strings.HasSuffix(out.String(), "Bye...\n") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunTrace(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(&out)
	sh.Trace = true

	sh.Eval("{1} + {2} * {3}")
	got := out.String()
	if !strings.Contains(got, "Tokens = {1} + {2} * {3}") || !strings.Contains(got, "Postfix = {1} {2} {3} * +") {
		t.Errorf("expected trace output:\n%s", got)
	}
}

type failingReader struct{}

func (failingReader) ReadLine() (string, error) {
	return "", errors.New("broken pipe")
}

func TestRunReadError(t *testing.T) {
	sh := newShell(io.Discard)
	err := sh.Run(context.Background(), failingReader{})
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	sh := newShell(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sh.Run(ctx, NewReader(strings.NewReader("{1}\n"), io.Discard)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEvalColor(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(&out)
	sh.Color = true

	sh.Eval("{1} + {1}")
	sh.Eval("{1} / {0}")
	got := out.String()
	if !strings.Contains(got, "{2}") || !strings.Contains(got, "ERROR: could not divide") {
		t.Errorf("styled output lost its text:\n%s", got)
	}
}
