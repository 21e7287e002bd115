package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct values using the HTTP JSON field names.
const ServiceName = "users.v1.UserService"

type UserServiceServer interface {
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ChangePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CurrentUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ChannelProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	WatchHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ValidateToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(srv UserServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

var UserServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unaryMethod("Login", UserServiceServer.Login),
		unaryMethod("RefreshToken", UserServiceServer.RefreshToken),
		unaryMethod("Logout", UserServiceServer.Logout),
		unaryMethod("ChangePassword", UserServiceServer.ChangePassword),
		unaryMethod("CurrentUser", UserServiceServer.CurrentUser),
		unaryMethod("ChannelProfile", UserServiceServer.ChannelProfile),
		unaryMethod("WatchHistory", UserServiceServer.WatchHistory),
		unaryMethod("ValidateToken", UserServiceServer.ValidateToken),
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "users/v1/users.proto",
}

func RegisterUserServiceServer(s gogrpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// FullMethod returns the wire name of a UserService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryMethod(name string, call structMethod) gogrpc.MethodDesc {
	return gogrpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(UserServiceServer), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(UserServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// UserServiceClient calls UserService methods over a client connection.
type UserServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewUserServiceClient(cc gogrpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
