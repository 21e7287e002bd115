package grpc

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/dto"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type callerUserKey struct{}

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*dto.UserView, error)
}

var publicMethods = map[string]bool{
	FullMethod("Login"):         true,
	FullMethod("RefreshToken"):  true,
	FullMethod("ValidateToken"): true,
}

// AuthUnaryInterceptor authenticates every non-public call from the
// "authorization: Bearer <token>" metadata entry.
func AuthUnaryInterceptor(sessions authenticator) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		user, err := authenticateIncoming(ctx, sessions)
		if err != nil {
			return nil, err
		}

		return handler(context.WithValue(ctx, callerUserKey{}, user), req)
	}
}

// UserFromContext returns the caller resolved by the auth interceptor.
func UserFromContext(ctx context.Context) (*dto.UserView, bool) {
	user, ok := ctx.Value(callerUserKey{}).(*dto.UserView)
	return user, ok && user != nil
}

func authenticateIncoming(ctx context.Context, sessions authenticator) (*dto.UserView, error) {
	tokenString := bearerFromMetadata(ctx)
	if tokenString == "" {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	user, err := sessions.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, toStatus(ctx, "authenticate", err)
	}
	return user, nil
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}

	parts := strings.Fields(values[0])
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
