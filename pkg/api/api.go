// Package api implements the REST API for evaluating complex expressions.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lemonberrylabs/complex-shell/pkg/batch"
	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// Server is the REST API server.
type Server struct {
	app   *fiber.App
	store *store.Store
	calc  *expr.Calculator
}

// New creates a new API server. calc supplies the function registry and the
// default display settings; requests may override the latter.
func New(s *store.Store, calc *expr.Calculator) *Server {
	srv := &Server{
		store: s,
		calc:  calc,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Expression API
	app.Post("/v1/evaluate", srv.evaluate)
	app.Post("/v1/tokenize", srv.tokenize)
	app.Post("/v1/postfix", srv.postfix)
	app.Post("/v1/batch", srv.runBatch)

	// History API
	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:id", srv.getEvaluation)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Expression Handlers ---

type expressionRequest struct {
	Expression string `json:"expression"`
	Magnitude  *int   `json:"magnitude"`
	Precision  *int   `json:"precision"`
	Polar      *bool  `json:"polar"`
}

// parseExpressionRequest reads the body and applies any display overrides to
// a copy of the server's calculator.
func (s *Server) parseExpressionRequest(c *fiber.Ctx) (*expressionRequest, *expr.Calculator, error) {
	var req expressionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, fmt.Errorf("invalid request body: %v", err)
	}
	if req.Expression == "" {
		return nil, nil, fmt.Errorf("expression is required")
	}

	calc := *s.calc
	if req.Magnitude != nil {
		if err := expr.CheckBudget("magnitude", *req.Magnitude); err != nil {
			return nil, nil, err
		}
		calc.Magnitude = *req.Magnitude
	}
	if req.Precision != nil {
		if err := expr.CheckBudget("precision", *req.Precision); err != nil {
			return nil, nil, err
		}
		calc.Precision = *req.Precision
	}
	if req.Polar != nil {
		calc.Polar = *req.Polar
	}
	return &req, &calc, nil
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	req, calc, err := s.parseExpressionRequest(c)
	if err != nil {
		return errorResponse(c, 400, "INVALID_ARGUMENT", err.Error())
	}

	result, err := calc.EvalString(req.Expression)
	ev := s.store.Record("api", req.Expression, result, err)
	if err != nil {
		return calcErrorResponse(c, ev.ID, err)
	}

	return c.JSON(fiber.Map{
		"id":         ev.ID,
		"expression": req.Expression,
		"result":     result,
	})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	req, _, err := s.parseExpressionRequest(c)
	if err != nil {
		return errorResponse(c, 400, "INVALID_ARGUMENT", err.Error())
	}
	if err := expr.CheckLength(req.Expression); err != nil {
		return calcErrorResponse(c, "", err)
	}

	tokens, err := expr.Tokenize(req.Expression)
	if err != nil {
		return calcErrorResponse(c, "", err)
	}

	return c.JSON(fiber.Map{
		"expression": req.Expression,
		"tokens":     tokensToJSON(tokens),
	})
}

func (s *Server) postfix(c *fiber.Ctx) error {
	req, _, err := s.parseExpressionRequest(c)
	if err != nil {
		return errorResponse(c, 400, "INVALID_ARGUMENT", err.Error())
	}
	if err := expr.CheckLength(req.Expression); err != nil {
		return calcErrorResponse(c, "", err)
	}

	tokens, err := expr.Tokenize(req.Expression)
	if err != nil {
		return calcErrorResponse(c, "", err)
	}
	postfix := expr.Reorder(tokens)

	return c.JSON(fiber.Map{
		"expression": req.Expression,
		"postfix":    tokensToJSON(postfix),
		"text":       expr.Join(postfix),
	})
}

// runBatch runs a YAML batch file posted as the request body.
func (s *Server) runBatch(c *fiber.Ctx) error {
	f, err := batch.Parse(c.Body())
	if err != nil {
		return errorResponse(c, 400, "INVALID_ARGUMENT", err.Error())
	}

	report, err := batch.Run(c.UserContext(), s.calc, f)
	if err != nil {
		return errorResponse(c, 503, "UNAVAILABLE", err.Error())
	}
	return c.JSON(report)
}

// --- History Handlers ---

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	evaluations := s.store.List(limit)

	items := make([]fiber.Map, len(evaluations))
	for i, ev := range evaluations {
		items[i] = evaluationToJSON(ev)
	}

	return c.JSON(fiber.Map{
		"evaluations": items,
	})
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(evaluationToJSON(ev))
}

// --- Helpers ---

func errorResponse(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

// calcErrorResponse reports a pipeline failure with its kind and, when
// known, the offending position. id is set when the failure was recorded.
func calcErrorResponse(c *fiber.Ctx, id string, err error) error {
	e := fiber.Map{
		"code":    400,
		"message": err.Error(),
		"status":  "INVALID_ARGUMENT",
		"kind":    types.KindOf(err),
	}
	if pos := types.PositionOf(err); pos != types.NoPosition {
		e["position"] = pos
	}
	body := fiber.Map{"error": e}
	if id != "" {
		body["id"] = id
	}
	return c.Status(400).JSON(body)
}

func tokensToJSON(tokens []expr.Token) []fiber.Map {
	items := make([]fiber.Map, len(tokens))
	for i, tok := range tokens {
		item := fiber.Map{
			"type": tok.Type.String(),
			"text": tok.String(),
		}
		if tok.Pos != types.NoPosition {
			item["position"] = tok.Pos
		}
		items[i] = item
	}
	return items
}

func evaluationToJSON(ev *store.Evaluation) fiber.Map {
	result := fiber.Map{
		"id":         ev.ID,
		"expression": ev.Expression,
		"state":      ev.State,
		"source":     ev.Source,
		"createTime": ev.CreateTime.Format(time.RFC3339),
	}

	if ev.State == store.EvaluationSucceeded {
		result["result"] = ev.Result
	}
	if ev.Error != nil {
		e := fiber.Map{
			"message": ev.Error.Message,
			"kind":    ev.Error.Kind,
		}
		if ev.Error.Position != nil {
			e["position"] = *ev.Error.Position
		}
		result["error"] = e
	}

	return result
}
