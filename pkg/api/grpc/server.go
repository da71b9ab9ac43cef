// Package grpcapi implements the gRPC calculator service. Requests and
// responses are google.protobuf.Struct messages, so clients need no
// generated code beyond the well-known types.
package grpcapi

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
	"github.com/lemonberrylabs/complex-shell/pkg/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "complexshell.v1.Calculator"

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements the Calculator service.
type Server struct {
	store *store.Store
	calc  *expr.Calculator
	grpc  *grpc.Server
}

// New creates a new gRPC server that records evaluations in s.
func New(s *store.Store, calc *expr.Calculator) *Server {
	srv := &Server{
		store: s,
		calc:  calc,
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	RegisterCalculatorServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// --- Calculator Service ---

// Evaluate evaluates {expression, magnitude?, precision?, polar?} and
// returns {id, expression, result}.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := expressionField(req)
	if err != nil {
		return nil, err
	}

	calc := *s.calc
	fields := req.GetFields()
	if v, ok := fields["magnitude"]; ok {
		n, err := budgetField("magnitude", v)
		if err != nil {
			return nil, err
		}
		calc.Magnitude = n
	}
	if v, ok := fields["precision"]; ok {
		n, err := budgetField("precision", v)
		if err != nil {
			return nil, err
		}
		calc.Precision = n
	}
	if v, ok := fields["polar"]; ok {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "polar must be a boolean")
		}
		calc.Polar = b.BoolValue
	}

	result, err := calc.EvalString(text)
	ev := s.store.Record("grpc", text, result, err)
	if err != nil {
		return nil, calcStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"id":         ev.ID,
		"expression": text,
		"result":     result,
	})
}

// Tokenize returns {expression, tokens} where each token is
// {type, text, position?}.
func (s *Server) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := expressionField(req)
	if err != nil {
		return nil, err
	}
	if err := expr.CheckLength(text); err != nil {
		return nil, calcStatus(err)
	}

	tokens, err := expr.Tokenize(text)
	if err != nil {
		return nil, calcStatus(err)
	}

	items := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		item := map[string]interface{}{
			"type": tok.Type.String(),
			"text": tok.String(),
		}
		if tok.Pos != types.NoPosition {
			item["position"] = tok.Pos
		}
		items[i] = item
	}

	return structpb.NewStruct(map[string]interface{}{
		"expression": text,
		"tokens":     items,
	})
}

// --- Helpers ---

func expressionField(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["expression"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "expression is required")
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", status.Error(codes.InvalidArgument, "expression must be a non-empty string")
	}
	return s.StringValue, nil
}

func budgetField(name string, v *structpb.Value) (int, error) {
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || num.NumberValue != float64(int(num.NumberValue)) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	n := int(num.NumberValue)
	if err := expr.CheckBudget(name, n); err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}
	return n, nil
}

// calcStatus maps a pipeline error to a gRPC status.
func calcStatus(err error) error {
	switch types.KindOf(err) {
	case types.KindArithmeticError:
		return status.Error(codes.OutOfRange, err.Error())
	case types.KindResourceLimitError:
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.InvalidArgument, err.Error())
	}
}

func logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Printf("grpc %s %s %s", info.FullMethod, status.Code(err), time.Since(start))
	return resp, err
}
