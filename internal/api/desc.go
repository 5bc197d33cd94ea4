package api

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ChatService_GetApplication_FullMethodName = "/hirrd.v1.ChatService/GetApplication"
	ChatService_LoadHistory_FullMethodName    = "/hirrd.v1.ChatService/LoadHistory"
	ChatService_Send_FullMethodName           = "/hirrd.v1.ChatService/Send"
	ChatService_Watch_FullMethodName          = "/hirrd.v1.ChatService/Watch"

	ApplicationService_PutJob_FullMethodName         = "/hirrd.v1.ApplicationService/PutJob"
	ApplicationService_PutApplication_FullMethodName = "/hirrd.v1.ApplicationService/PutApplication"
	ApplicationService_SetStatus_FullMethodName      = "/hirrd.v1.ApplicationService/SetStatus"

	DaemonService_GetStatus_FullMethodName = "/hirrd.v1.DaemonService/GetStatus"
)

// ChatServiceServer is the server API for hirrd.v1.ChatService.
type ChatServiceServer interface {
	GetApplication(context.Context, *GetApplicationRequest) (*GetApplicationResponse, error)
	LoadHistory(context.Context, *LoadHistoryRequest) (*LoadHistoryResponse, error)
	Send(context.Context, *SendRequest) (*SendResponse, error)
	Watch(*WatchRequest, grpc.ServerStreamingServer[WatchEvent]) error
}

// ApplicationServiceServer is the server API for hirrd.v1.ApplicationService.
type ApplicationServiceServer interface {
	PutJob(context.Context, *PutJobRequest) (*PutJobResponse, error)
	PutApplication(context.Context, *PutApplicationRequest) (*PutApplicationResponse, error)
	SetStatus(context.Context, *SetStatusRequest) (*SetStatusResponse, error)
}

// DaemonServiceServer is the server API for hirrd.v1.DaemonService.
type DaemonServiceServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
}

// unary builds the method descriptor of a unary RPC whose request decodes
// into Req and whose implementation is call.
func unary[S any, Req any, Resp any](name, fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func chatWatchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).Watch(in, &grpc.GenericServerStream[WatchRequest, WatchEvent]{ServerStream: stream})
}

var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "hirrd.v1.ChatService",
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetApplication", ChatService_GetApplication_FullMethodName, ChatServiceServer.GetApplication),
		unary("LoadHistory", ChatService_LoadHistory_FullMethodName, ChatServiceServer.LoadHistory),
		unary("Send", ChatService_Send_FullMethodName, ChatServiceServer.Send),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       chatWatchHandler,
			ServerStreams: true,
		},
	},
}

var ApplicationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "hirrd.v1.ApplicationService",
	HandlerType: (*ApplicationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("PutJob", ApplicationService_PutJob_FullMethodName, ApplicationServiceServer.PutJob),
		unary("PutApplication", ApplicationService_PutApplication_FullMethodName, ApplicationServiceServer.PutApplication),
		unary("SetStatus", ApplicationService_SetStatus_FullMethodName, ApplicationServiceServer.SetStatus),
	},
}

var DaemonService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "hirrd.v1.DaemonService",
	HandlerType: (*DaemonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetStatus", DaemonService_GetStatus_FullMethodName, DaemonServiceServer.GetStatus),
	},
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func RegisterApplicationServiceServer(s grpc.ServiceRegistrar, srv ApplicationServiceServer) {
	s.RegisterService(&ApplicationService_ServiceDesc, srv)
}

func RegisterDaemonServiceServer(s grpc.ServiceRegistrar, srv DaemonServiceServer) {
	s.RegisterService(&DaemonService_ServiceDesc, srv)
}

// ChatServiceClient is the client API for hirrd.v1.ChatService.
type ChatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) *ChatServiceClient {
	return &ChatServiceClient{cc: cc}
}

func (c *ChatServiceClient) GetApplication(ctx context.Context, in *GetApplicationRequest, opts ...grpc.CallOption) (*GetApplicationResponse, error) {
	out := new(GetApplicationResponse)
	if err := c.cc.Invoke(ctx, ChatService_GetApplication_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChatServiceClient) LoadHistory(ctx context.Context, in *LoadHistoryRequest, opts ...grpc.CallOption) (*LoadHistoryResponse, error) {
	out := new(LoadHistoryResponse)
	if err := c.cc.Invoke(ctx, ChatService_LoadHistory_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChatServiceClient) Send(ctx context.Context, in *SendRequest, opts ...grpc.CallOption) (*SendResponse, error) {
	out := new(SendResponse)
	if err := c.cc.Invoke(ctx, ChatService_Send_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChatServiceClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[WatchEvent], error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_Watch_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, WatchEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ApplicationServiceClient is the client API for hirrd.v1.ApplicationService.
type ApplicationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewApplicationServiceClient(cc grpc.ClientConnInterface) *ApplicationServiceClient {
	return &ApplicationServiceClient{cc: cc}
}

func (c *ApplicationServiceClient) PutJob(ctx context.Context, in *PutJobRequest, opts ...grpc.CallOption) (*PutJobResponse, error) {
	out := new(PutJobResponse)
	if err := c.cc.Invoke(ctx, ApplicationService_PutJob_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) PutApplication(ctx context.Context, in *PutApplicationRequest, opts ...grpc.CallOption) (*PutApplicationResponse, error) {
	out := new(PutApplicationResponse)
	if err := c.cc.Invoke(ctx, ApplicationService_PutApplication_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ApplicationServiceClient) SetStatus(ctx context.Context, in *SetStatusRequest, opts ...grpc.CallOption) (*SetStatusResponse, error) {
	out := new(SetStatusResponse)
	if err := c.cc.Invoke(ctx, ApplicationService_SetStatus_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// DaemonServiceClient is the client API for hirrd.v1.DaemonService.
type DaemonServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDaemonServiceClient(cc grpc.ClientConnInterface) *DaemonServiceClient {
	return &DaemonServiceClient{cc: cc}
}

func (c *DaemonServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	out := new(GetStatusResponse)
	if err := c.cc.Invoke(ctx, DaemonService_GetStatus_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
