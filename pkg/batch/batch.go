// Package batch loads YAML files listing expressions with their expected
// results and runs them through a calculator.
package batch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// MaxSourceSize is the maximum batch file size in bytes (128 KB).
const MaxSourceSize = 128 * 1024

// MaxCases is the maximum number of cases in one file.
const MaxCases = 1000

// File is a parsed batch file.
type File struct {
	Format Format
	Cases  []*Case
}

// Format overrides the calculator's display settings for a whole file. Nil
// budgets keep the calculator's own.
type Format struct {
	Magnitude *int
	Precision *int
	Polar     bool
}

// Case is a single expression to evaluate.
type Case struct {
	Name        string
	Expr        string
	Expect      string // formatted result, empty when only success is required
	ExpectError string // error kind, empty when success is expected
	Line        int
}

// ParseError represents an error encountered while parsing a batch file.
type ParseError struct {
	Message  string
	Location string // e.g., "case 'product'"
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

var knownKinds = map[string]bool{
	types.KindLiteralParseError:  true,
	types.KindTokenizeError:      true,
	types.KindArithmeticError:    true,
	types.KindEvaluationError:    true,
	types.KindUnknownFunction:    true,
	types.KindResourceLimitError: true,
}

// Load reads and parses the batch file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML batch file.
func Parse(source []byte) (*File, error) {
	if len(source) > MaxSourceSize {
		return nil, &ParseError{Message: fmt.Sprintf("batch source size %d exceeds maximum %d bytes", len(source), MaxSourceSize)}
	}

	source = quoteLiterals(source)

	var raw yaml.Node
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 {
		return nil, &ParseError{Message: "empty batch file"}
	}

	root := raw.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "batch file must be a mapping"}
	}

	file := &File{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]

		switch key {
		case "format":
			f, err := parseFormat(val)
			if err != nil {
				return nil, err
			}
			file.Format = f
		case "cases":
			cases, err := parseCases(val)
			if err != nil {
				return nil, err
			}
			file.Cases = cases
		default:
			return nil, &ParseError{Message: fmt.Sprintf("unknown top-level key '%s'", key)}
		}
	}

	if len(file.Cases) == 0 {
		return nil, &ParseError{Message: "batch file must have at least one case"}
	}
	return file, nil
}

func parseFormat(node *yaml.Node) (Format, error) {
	var f Format
	if node.Kind != yaml.MappingNode {
		return f, &ParseError{Message: "format must be a mapping", Location: "format"}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch key {
		case "magnitude", "precision":
			var n int
			if err := val.Decode(&n); err != nil {
				return f, &ParseError{
					Message:  fmt.Sprintf("%s must be an integer", key),
					Location: "format",
				}
			}
			if err := expr.CheckBudget(key, n); err != nil {
				return f, &ParseError{Message: err.Error(), Location: "format"}
			}
			if key == "magnitude" {
				f.Magnitude = &n
			} else {
				f.Precision = &n
			}
		case "polar":
			if err := val.Decode(&f.Polar); err != nil {
				return f, &ParseError{Message: "polar must be a boolean", Location: "format"}
			}
		default:
			return f, &ParseError{
				Message:  fmt.Sprintf("unknown key '%s'", key),
				Location: "format",
			}
		}
	}
	return f, nil
}

func parseCases(node *yaml.Node) ([]*Case, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{Message: "cases must be a sequence"}
	}
	if len(node.Content) > MaxCases {
		return nil, &ParseError{Message: fmt.Sprintf("%d cases exceed maximum %d", len(node.Content), MaxCases)}
	}

	cases := make([]*Case, 0, len(node.Content))
	for i, item := range node.Content {
		c, err := parseCase(i+1, item)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func parseCase(n int, node *yaml.Node) (*Case, error) {
	c := &Case{Name: fmt.Sprintf("case %d", n), Line: node.Line}

	// Shorthand: a bare scalar is an expression that must succeed.
	if node.Kind == yaml.ScalarNode {
		c.Expr = node.Value
		return c, nil
	}

	loc := fmt.Sprintf("case %d (line %d)", n, node.Line)
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "case must be a mapping or a string", Location: loc}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, &ParseError{Message: fmt.Sprintf("%s must be a string", key), Location: loc}
		}

		switch key {
		case "name":
			c.Name = val.Value
		case "expr":
			c.Expr = val.Value
		case "expect":
			c.Expect = val.Value
		case "expectError":
			if !knownKinds[val.Value] {
				return nil, &ParseError{
					Message:  fmt.Sprintf("unknown error kind '%s'", val.Value),
					Location: loc,
				}
			}
			c.ExpectError = val.Value
		default:
			return nil, &ParseError{Message: fmt.Sprintf("unknown key '%s'", key), Location: loc}
		}
	}

	if strings.TrimSpace(c.Expr) == "" {
		return nil, &ParseError{Message: "case must have 'expr'", Location: loc}
	}
	if c.Expect != "" && c.ExpectError != "" {
		return nil, &ParseError{Message: "expect and expectError are mutually exclusive", Location: loc}
	}
	return c, nil
}

// quoteLiterals single-quotes expr and expect values that begin with a
// literal brace so YAML does not read them as flow mappings. Lines whose
// value is already quoted are left alone.
func quoteLiterals(source []byte) []byte {
	s := string(source)
	if !strings.Contains(s, "{") && !strings.Contains(s, "@") {
		return source
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(body)]
		if strings.HasPrefix(body, "- ") {
			indent += "- "
			body = strings.TrimLeft(body[2:], " \t")
		}

		key, value, ok := strings.Cut(body, ":")
		switch {
		case ok && (key == "expr" || key == "expect"):
			value = strings.TrimSpace(stripComment(value))
			if startsLiteral(value) {
				lines[i] = indent + key + ": " + singleQuote(value)
			}
		case !ok && strings.HasSuffix(indent, "- ") && startsLiteral(body):
			// A bare sequence item such as "- {1} + {2}".
			lines[i] = indent + singleQuote(strings.TrimSpace(stripComment(body)))
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

// stripComment drops a trailing YAML comment, which starts at a '#' preceded
// by whitespace.
func stripComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}

func startsLiteral(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "@")
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
