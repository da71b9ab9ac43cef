// Package shell implements the interactive read-evaluate-print loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
)

// Prompt is printed before every line.
const Prompt = "c$ "

var (
	resultStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	traceStyle  = lipgloss.NewStyle().Faint(true)
)

// LineReader yields input lines without their trailing newline and returns
// io.EOF when input ends. *term.Terminal satisfies it.
type LineReader interface {
	ReadLine() (string, error)
}

// Shell evaluates one expression per input line.
type Shell struct {
	Calc *expr.Calculator
	// History records every evaluation when non-nil.
	History *store.Store
	// Trace prints the token and postfix stages before each result.
	Trace bool
	// Color styles results and errors for a terminal.
	Color bool
	Out   io.Writer
}

// Run reads lines until input ends, the user types quit or ctx is done.
func (s *Shell) Run(ctx context.Context, in LineReader) error {
	fmt.Fprintln(s.Out, "Complex shell!")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.Out, "Bye...")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if !s.Eval(line) {
			fmt.Fprintln(s.Out, "Bye...")
			return nil
		}
	}
}

// Eval handles a single line and reports whether the loop should continue.
func (s *Shell) Eval(line string) bool {
	text := strings.TrimSpace(line)
	switch strings.ToLower(text) {
	case "":
		return true
	case "quit", "exit":
		return false
	}

	tr, err := s.Calc.Trace(text)
	if s.Trace && tr != nil {
		fmt.Fprintln(s.Out, s.paint(traceStyle, "Tokens = "+expr.Join(tr.Tokens)))
		fmt.Fprintln(s.Out, s.paint(traceStyle, "Postfix = "+expr.Join(tr.Postfix)))
	}

	var result string
	if err == nil {
		result = s.Calc.Format(tr.Result)
		fmt.Fprintln(s.Out, "Result = "+s.paint(resultStyle, result))
	} else {
		fmt.Fprintln(s.Out, s.paint(errorStyle, "ERROR: "+err.Error()))
	}
	if s.History != nil {
		s.History.Record("repl", text, result, err)
	}
	return true
}

func (s *Shell) paint(style lipgloss.Style, text string) string {
	if !s.Color {
		return text
	}
	return style.Render(text)
}

// scannerReader adapts a bufio.Scanner, printing the prompt before each line.
type scannerReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *scannerReader) ReadLine() (string, error) {
	fmt.Fprint(r.out, Prompt)
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// NewReader returns a LineReader that prints Prompt to out before reading
// each line from in.
func NewReader(in io.Reader, out io.Writer) LineReader {
	return &scannerReader{sc: bufio.NewScanner(in), out: out}
}

// RunTerminal runs the shell on the process's standard streams. When stdin
// is a terminal it is switched to raw mode for line editing and history;
// otherwise lines are read plainly.
func (s *Shell) RunTerminal(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return s.Run(ctx, NewReader(os.Stdin, s.Out))
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	defer term.Restore(fd, state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, Prompt)

	out, color := s.Out, s.Color
	s.Out, s.Color = t, true
	defer func() { s.Out, s.Color = out, color }()
	return s.Run(ctx, t)
}
