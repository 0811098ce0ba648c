package grpc

import (
	"context"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name of the run service.
const ServiceName = "hydrosphere.v1.Runs"

// Full method names.
const (
	CreateRunMethod = "/" + ServiceName + "/CreateRun"
	GetRunMethod    = "/" + ServiceName + "/GetRun"
	ListRunsMethod  = "/" + ServiceName + "/ListRuns"
)

// CreateRunRequest asks for one synchronous run. A nil Simulation runs the
// default column.
type CreateRunRequest struct {
	Simulation *config.SimulationData `msgpack:"simulation,omitempty"`
	StepLimit  int                    `msgpack:"step_limit,omitempty"`
}

// GetRunRequest names a stored run.
type GetRunRequest struct {
	ID string `msgpack:"id"`
}

// ListRunsRequest asks for the most recent runs. Zero means the server
// default.
type ListRunsRequest struct {
	Limit int `msgpack:"limit,omitempty"`
}

// RunReply carries one run with its profile.
type RunReply struct {
	Run *storage.RunRecord `msgpack:"run"`
}

// ListRunsReply carries runs without their profiles, newest first.
type ListRunsReply struct {
	Runs []storage.RunRecord `msgpack:"runs"`
}

// RunServiceServer is implemented by the controller.
type RunServiceServer interface {
	CreateRun(context.Context, *CreateRunRequest) (*RunReply, error)
	GetRun(context.Context, *GetRunRequest) (*RunReply, error)
	ListRuns(context.Context, *ListRunsRequest) (*ListRunsReply, error)
}

// RegisterRunServiceServer registers srv on s.
func RegisterRunServiceServer(s grpc.ServiceRegistrar, srv RunServiceServer) {
	s.RegisterService(&runServiceDesc, srv)
}

var runServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RunServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: createRunHandler},
		{MethodName: "GetRun", Handler: getRunHandler},
		{MethodName: "ListRuns", Handler: listRunsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hydrosphere/v1/runs",
}

func createRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunServiceServer).CreateRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RunServiceServer).CreateRun(ctx, req.(*CreateRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RunServiceServer).GetRun(ctx, req.(*GetRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listRunsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListRunsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunServiceServer).ListRuns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListRunsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RunServiceServer).ListRuns(ctx, req.(*ListRunsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the run service over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc. Calls are sent with the msgpack codec.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreateRun(ctx context.Context, in *CreateRunRequest, opts ...grpc.CallOption) (*RunReply, error) {
	out := new(RunReply)
	if err := c.invoke(ctx, CreateRunMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*RunReply, error) {
	out := new(RunReply)
	if err := c.invoke(ctx, GetRunMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRuns(ctx context.Context, in *ListRunsRequest, opts ...grpc.CallOption) (*ListRunsReply, error) {
	out := new(ListRunsReply)
	if err := c.invoke(ctx, ListRunsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
