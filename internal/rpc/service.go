package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/sigrelay/internal/models"
)

const ServiceName = "sigrelay.Relay"

// Method names. Full gRPC method paths are "/" + ServiceName + "/" + name.
const (
	MethodPing         = "Ping"
	MethodAuthenticate = "Authenticate"
	MethodGetSession   = "GetSession"
	MethodPublishEvent = "PublishEvent"
	MethodGetEvent     = "GetEvent"
	MethodListEvents   = "ListEvents"
	MethodDeleteEvent  = "DeleteEvent"
	MethodRegisterUser = "RegisterUser"
	MethodGetUser      = "GetUser"
	MethodListUsers    = "ListUsers"
)

func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// RelayServer is implemented by the gRPC transport.
type RelayServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*SessionInfo, error)
	GetSession(context.Context, *Empty) (*SessionInfo, error)
	PublishEvent(context.Context, *models.Event) (*models.Event, error)
	GetEvent(context.Context, *IDRequest) (*models.Event, error)
	ListEvents(context.Context, *Empty) (*EventList, error)
	DeleteEvent(context.Context, *IDRequest) (*Empty, error)
	RegisterUser(context.Context, *models.User) (*models.User, error)
	GetUser(context.Context, *KeyRequest) (*models.User, error)
	ListUsers(context.Context, *Empty) (*UserList, error)
}

// method builds a unary MethodDesc that decodes Req and calls call.
func method[Req, Resp any](name string, call func(RelayServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RelayServer), ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, r any) (any, error) {
				return call(srv.(RelayServer), ctx, r.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// ServiceDesc describes the relay service to grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RelayServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodPing, RelayServer.Ping),
		method(MethodAuthenticate, RelayServer.Authenticate),
		method(MethodGetSession, RelayServer.GetSession),
		method(MethodPublishEvent, RelayServer.PublishEvent),
		method(MethodGetEvent, RelayServer.GetEvent),
		method(MethodListEvents, RelayServer.ListEvents),
		method(MethodDeleteEvent, RelayServer.DeleteEvent),
		method(MethodRegisterUser, RelayServer.RegisterUser),
		method(MethodGetUser, RelayServer.GetUser),
		method(MethodListUsers, RelayServer.ListUsers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sigrelay/relay",
}

func RegisterRelayServer(s grpc.ServiceRegistrar, srv RelayServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// RelayClient calls the relay service over conn using the JSON codec.
type RelayClient struct {
	conn grpc.ClientConnInterface
}

func NewRelayClient(conn grpc.ClientConnInterface) *RelayClient {
	return &RelayClient{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *RelayClient, name string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, FullMethod(name), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RelayClient) Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, MethodPing, &Empty{}, opts...)
}

func (c *RelayClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	return invoke[SessionInfo](ctx, c, MethodAuthenticate, in, opts...)
}

func (c *RelayClient) GetSession(ctx context.Context, opts ...grpc.CallOption) (*SessionInfo, error) {
	return invoke[SessionInfo](ctx, c, MethodGetSession, &Empty{}, opts...)
}

func (c *RelayClient) PublishEvent(ctx context.Context, in *models.Event, opts ...grpc.CallOption) (*models.Event, error) {
	return invoke[models.Event](ctx, c, MethodPublishEvent, in, opts...)
}

func (c *RelayClient) GetEvent(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*models.Event, error) {
	return invoke[models.Event](ctx, c, MethodGetEvent, in, opts...)
}

func (c *RelayClient) ListEvents(ctx context.Context, opts ...grpc.CallOption) (*EventList, error) {
	return invoke[EventList](ctx, c, MethodListEvents, &Empty{}, opts...)
}

func (c *RelayClient) DeleteEvent(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDeleteEvent, in, opts...)
}

func (c *RelayClient) RegisterUser(ctx context.Context, in *models.User, opts ...grpc.CallOption) (*models.User, error) {
	return invoke[models.User](ctx, c, MethodRegisterUser, in, opts...)
}

func (c *RelayClient) GetUser(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*models.User, error) {
	return invoke[models.User](ctx, c, MethodGetUser, in, opts...)
}

func (c *RelayClient) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*UserList, error) {
	return invoke[UserList](ctx, c, MethodListUsers, &Empty{}, opts...)
}
