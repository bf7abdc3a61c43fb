package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AuthServiceName is the gRPC service the identity backend exposes. Messages
// are google.protobuf.Struct values with the same field names as the JSON API.
const AuthServiceName = "gophsession.v1.AuthService"

// Full method names of AuthServiceName.
const (
	MethodRegister     = "/" + AuthServiceName + "/Register"
	MethodLogin        = "/" + AuthServiceName + "/Login"
	MethodCurrentUser  = "/" + AuthServiceName + "/CurrentUser"
	MethodVerifyEmail  = "/" + AuthServiceName + "/VerifyEmail"
	MethodLogout       = "/" + AuthServiceName + "/Logout"
	MethodRefreshToken = "/" + AuthServiceName + "/RefreshToken"
)

var _ Client = (*GRPCClient)(nil)

// invoker is the part of *grpc.ClientConn the client needs; tests swap it.
type invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

type GRPCClient struct {
	target  string
	timeout time.Duration
	conn    *grpc.ClientConn
	cc      invoker
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerValue(token))

	return metadata.NewOutgoingContext(ctx, md)
}

// timeoutInterceptor bounds calls whose context carries no deadline.
func (c *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to target. Without opts the transport is
// insecure, matching a local relay.
func NewGRPCClient(target string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{target: target, timeout: timeout}

	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	opts = append(opts, grpc.WithUnaryInterceptor(c.timeoutInterceptor))

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (c *GRPCClient) Register(ctx context.Context, req models.RegistrationRequest) (string, error) {
	var out registeredDTO
	if err := c.call(ctx, MethodRegister, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *GRPCClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var out loginDTO
	if err := c.call(ctx, MethodLogin, creds, &out); err != nil {
		return nil, err
	}
	res, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return res, nil
}

func (c *GRPCClient) CurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	var out userDTO
	if err := c.call(withAccessToken(ctx, accessToken), MethodCurrentUser, struct{}{}, &out); err != nil {
		return nil, err
	}
	user, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return user, nil
}

func (c *GRPCClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var out messageDTO
	if err := c.call(ctx, MethodVerifyEmail, map[string]string{"token": token}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *GRPCClient) Logout(ctx context.Context, accessToken string) error {
	return c.call(withAccessToken(ctx, accessToken), MethodLogout, struct{}{}, nil)
}

func (c *GRPCClient) RefreshToken(ctx context.Context, refreshToken string) (*models.LoginResult, error) {
	var out loginDTO
	if err := c.call(ctx, MethodRefreshToken, refreshDTO{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	res, err := out.toModel()
	if err != nil {
		return nil, MalformedResponse(http.StatusOK, err)
	}
	return res, nil
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	req, err := ToStruct(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	reply := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, req, reply); err != nil {
		return c.mapError(err)
	}
	if out == nil {
		return nil
	}
	if err := FromStruct(reply, out); err != nil {
		return MalformedResponse(http.StatusOK, err)
	}
	return nil
}

// mapError converts a gRPC status into a *Failure with the HTTP status the
// relay would have produced.
func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return NetworkFailure(err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return NetworkFailure(err)
	case codes.Unauthenticated:
		return NewFailure(http.StatusUnauthorized, st.Message())
	case codes.PermissionDenied:
		return NewFailure(http.StatusForbidden, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return NewFailure(http.StatusBadRequest, st.Message())
	case codes.NotFound:
		return NewFailure(http.StatusNotFound, st.Message())
	case codes.AlreadyExists, codes.Aborted:
		return NewFailure(http.StatusConflict, st.Message())
	case codes.ResourceExhausted:
		return NewFailure(http.StatusTooManyRequests, st.Message())
	default:
		return NewFailure(http.StatusInternalServerError, st.Message())
	}
}

// ToStruct converts a JSON-encodable value into a google.protobuf.Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("value does not encode to a JSON object")
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a google.protobuf.Struct into out via its JSON form.
func FromStruct(s *structpb.Struct, out any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
