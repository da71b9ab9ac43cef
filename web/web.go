// Package web provides the embedded calculator web UI.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// historySize is the number of recent evaluations shown on the calculator page.
const historySize = 20

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	calc    *expr.Calculator
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store, calc *expr.Calculator) *Handler {
	return &Handler{
		store: s,
		calc:  calc,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Each page is parsed with the layout on its own so that the "content"
	// blocks of different pages do not collide.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.calculator)
	app.Post("/ui", h.evaluate)
	app.Get("/ui/evaluations/:id", h.evaluationDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type calculatorContent struct {
	Expression string
	Precision  int
	Polar      bool
	Current    *store.Evaluation
	Postfix    string
	History    []*store.Evaluation
	Functions  []string
}

type evaluationDetailContent struct {
	Evaluation *store.Evaluation
	Tokens     []expr.Token
	Postfix    string
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) calculator(c *fiber.Ctx) error {
	return h.render(c, "calculator.html", "calculator", h.calculatorContent())
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	content := h.calculatorContent()
	content.Expression = c.FormValue("expression")
	content.Polar = c.FormValue("polar") != ""

	calc := *h.calc
	calc.Polar = content.Polar
	if p := c.FormValue("precision"); p != "" {
		n, err := strconv.Atoi(p)
		if err == nil {
			err = expr.CheckBudget("precision", n)
		}
		if err != nil {
			content.Current = &store.Evaluation{
				Expression: content.Expression,
				State:      store.EvaluationFailed,
				Error:      &store.EvaluationError{Message: fmt.Sprintf("invalid precision %q", p)},
			}
			return h.render(c, "calculator.html", "calculator", content)
		}
		calc.Precision = n
	}
	content.Precision = calc.Precision

	if content.Expression != "" {
		var result string
		tr, err := calc.Trace(content.Expression)
		if tr != nil {
			content.Postfix = expr.Join(tr.Postfix)
		}
		if err == nil {
			result = calc.Format(tr.Result)
		}
		content.Current = h.store.Record("web", content.Expression, result, err)
		content.History = h.store.List(historySize)
	}

	return h.render(c, "calculator.html", "calculator", content)
}

func (h *Handler) evaluationDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	ev, err := h.store.Get(id)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Evaluation '%s' not found", id),
		})
	}

	content := evaluationDetailContent{Evaluation: ev}
	if tokens, err := expr.Tokenize(ev.Expression); err == nil {
		content.Tokens = tokens
		content.Postfix = expr.Join(expr.Reorder(tokens))
	}

	return h.render(c, "evaluation_detail.html", "history", content)
}

func (h *Handler) calculatorContent() *calculatorContent {
	content := &calculatorContent{
		Precision: h.calc.Precision,
		Polar:     h.calc.Polar,
		History:   h.store.List(historySize),
	}
	// The stdlib registry can list its functions.
	if named, ok := h.calc.Functions.(interface{ Names() []string }); ok {
		content.Functions = named.Names()
	}
	return content
}

// --- Template Helpers ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04:05")
}

func stateClass(state store.EvaluationState) string {
	switch state {
	case store.EvaluationSucceeded:
		return "state-succeeded"
	case store.EvaluationFailed:
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state store.EvaluationState) template.HTML {
	switch state {
	case store.EvaluationSucceeded:
		return "&#10003;"
	case store.EvaluationFailed:
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
