package fakeidp

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophsession/internal/client/client"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AuthServiceServer is the server side of client.AuthServiceName.
type AuthServiceServer interface {
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CurrentUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	VerifyEmail(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes AuthService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: client.AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("CurrentUser", AuthServiceServer.CurrentUser),
		unary("VerifyEmail", AuthServiceServer.VerifyEmail),
		unary("Logout", AuthServiceServer.Logout),
		unary("RefreshToken", AuthServiceServer.RefreshToken),
	},
	Streams: []grpc.StreamDesc{},
}

func unary(name string, fn func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			call := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + client.AuthServiceName + "/" + name}
			return interceptor(ctx, in, info, call)
		},
	}
}

type ctxKey string

const accessTokenKey ctxKey = "access_token"

// GRPCServer adapts a Backend to AuthServiceServer.
type GRPCServer struct {
	backend *Backend
}

var _ AuthServiceServer = (*GRPCServer)(nil)

// NewGRPCServer returns a grpc.Server with AuthService registered.
func NewGRPCServer(b *Backend, opts ...grpc.ServerOption) *grpc.Server {
	s := &GRPCServer{backend: b}
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// accessTokenInterceptor moves the bearer token from metadata into the
// context for the methods that need one.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == client.MethodCurrentUser || info.FullMethod == client.MethodLogout {
		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
				accessToken, _ = common.TokenFromBearer(values[0])
			}
		}
		if accessToken == "" {
			return nil, status.Error(codes.Unauthenticated, "Not authenticated")
		}
		ctx = context.WithValue(ctx, accessTokenKey, accessToken)
	}
	return handler(ctx, req)
}

func (s *GRPCServer) Register(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RegisterRequest
	if err := client.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "")
	}
	return reply(s.backend.Register(req))
}

func (s *GRPCServer) Login(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LoginRequest
	if err := client.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "")
	}
	return reply(s.backend.Login(req))
}

func (s *GRPCServer) CurrentUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	token, _ := ctx.Value(accessTokenKey).(string)
	return reply(s.backend.Me(token))
}

func (s *GRPCServer) VerifyEmail(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token, _ := in.AsMap()["token"].(string)
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "")
	}
	msg, err := s.backend.VerifyEmail(token)
	return reply(map[string]string{"message": msg}, err)
}

func (s *GRPCServer) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	token, _ := ctx.Value(accessTokenKey).(string)
	msg, err := s.backend.Logout(token)
	return reply(map[string]string{"message": msg}, err)
}

func (s *GRPCServer) RefreshToken(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token, _ := in.AsMap()["refresh_token"].(string)
	return reply(s.backend.Refresh(token))
}

func reply[T any](v T, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := client.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "Internal server error")
	}
	return out, nil
}

func toStatus(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, "Internal server error")
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return status.Error(codes.Unauthenticated, e.Detail)
	case http.StatusForbidden:
		return status.Error(codes.PermissionDenied, e.Detail)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return status.Error(codes.InvalidArgument, e.Detail)
	case http.StatusNotFound:
		return status.Error(codes.NotFound, e.Detail)
	case http.StatusConflict:
		return status.Error(codes.AlreadyExists, e.Detail)
	case http.StatusTooManyRequests:
		return status.Error(codes.ResourceExhausted, e.Detail)
	default:
		return status.Error(codes.Internal, e.Detail)
	}
}
