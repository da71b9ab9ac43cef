package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// RegisterCalculatorServer registers srv on s under ServiceName.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler: unaryHandler("Evaluate", func(srv CalculatorServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.Evaluate(ctx, in)
			}),
		},
		{
			MethodName: "Tokenize",
			Handler: unaryHandler("Tokenize", func(srv CalculatorServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.Tokenize(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "complexshell/v1/calculator.proto",
}

type unaryMethod func(CalculatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CalculatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CalculatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is a Calculator service client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate calls Calculator.Evaluate.
func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Evaluate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Tokenize calls Calculator.Tokenize.
func (c *Client) Tokenize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Tokenize", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
