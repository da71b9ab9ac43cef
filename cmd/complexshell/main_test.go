package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEval(t *testing.T) {
	out, _, err := execute(t, "eval", "{2} + {i}", "{4 + 2i} / {3 - i}")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "{2 + i}\n{1 + i}\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestEvalFlags(t *testing.T) {
	out, _, err := execute(t, "eval", "--precision", "2", "--polar", "{0, 2}")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "@{2, 1.57}\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestEvalTrace(t *testing.T) {
	out, _, err := execute(t, "eval", "--trace", "{1} + {2} * {3}")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.Contains(out, "Postfix = {1} {2} {3} * +") || !strings.HasSuffix(out, "{7}\n") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestEvalFailure(t *testing.T) {
	out, errOut, err := execute(t, "eval", "{1} / {0}", "{1}")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 expressions failed") {
		t.Fatalf("expected failure summary, got %v", err)
	}
	if !strings.Contains(errOut, "could not divide") {
		t.Errorf("expected error on stderr, got %q", errOut)
	}
	if out != "{1}\n" {
		t.Errorf("expected remaining expressions to be evaluated, got %q", out)
	}
}

func TestEvalConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complexshell.yaml")
	if err := os.WriteFile(path, []byte("precision: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "eval", "--config", path, "{1} / {3}")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "{0.3}\n" {
		t.Errorf("unexpected output %q", out)
	}

	out, _, err = execute(t, "eval", "--config", path, "--precision", "3", "{1} / {3}")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "{0.333}\n" {
		t.Errorf("flag should override file, got %q", out)
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	pass := filepath.Join(dir, "pass.yaml")
	fail := filepath.Join(dir, "fail.yaml")
	os.WriteFile(pass, []byte("cases:\n  - expr: '{i} * {i}'\n    expect: '{-1}'\n"), 0o644)
	os.WriteFile(fail, []byte("cases:\n  - expr: '{1}'\n    expect: '{2}'\n"), 0o644)

	out, _, err := execute(t, "batch", pass)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(out, "1 passed, 0 failed") {
		t.Errorf("unexpected output %q", out)
	}

	out, _, err = execute(t, "batch", pass, fail)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out, "FAIL case 1: expected {2}, got {1}") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "complexshell version dev") {
		t.Errorf("unexpected output %q", out)
	}
}
