package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ UserServiceServer = (*UserServer)(nil)

type UserServer struct {
	sessions service.SessionService
	accounts service.AccountService
	profiles service.ProfileService
}

func NewUserServer(sessions service.SessionService, accounts service.AccountService, profiles service.ProfileService) *UserServer {
	return &UserServer{
		sessions: sessions,
		accounts: accounts,
		profiles: profiles,
	}
}

func (s *UserServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.LoginRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		logrus.Debug("Login validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"username": req.Username,
		"email":    req.Email,
	}).Info("Login request received (grpc)")
	result, err := s.sessions.Login(ctx, &req)
	if err != nil {
		return nil, toStatus(ctx, "Login", err)
	}

	logrus.WithField("user_id", result.User.ID).Info("Login successful (grpc)")
	return encodeResponse(result)
}

func (s *UserServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.RefreshTokenRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	pair, err := s.sessions.Refresh(ctx, &req)
	if err != nil {
		return nil, toStatus(ctx, "RefreshToken", err)
	}

	logrus.Info("Refresh token successful (grpc)")
	return encodeResponse(pair)
}

func (s *UserServer) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	if err := s.sessions.Logout(ctx, user.ID); err != nil {
		return nil, toStatus(ctx, "Logout", err)
	}

	logrus.WithField("user_id", user.ID).Info("Logout successful (grpc)")
	return encodeResponse(map[string]string{"message": "User logged out"})
}

func (s *UserServer) ChangePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	var req types.ChangePasswordRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.sessions.ChangePassword(ctx, user.ID, &req); err != nil {
		return nil, toStatus(ctx, "ChangePassword", err)
	}

	logrus.WithField("user_id", user.ID).Info("Password changed (grpc)")
	return encodeResponse(map[string]string{"message": "Password changed successfully"})
}

func (s *UserServer) CurrentUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	view, err := s.accounts.CurrentUser(ctx, user.ID)
	if err != nil {
		return nil, toStatus(ctx, "CurrentUser", err)
	}
	return encodeResponse(view)
}

func (s *UserServer) ChannelProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	var req types.ChannelProfileRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	channel, err := s.profiles.ChannelProfile(ctx, req.Username, user.ID)
	if err != nil {
		return nil, toStatus(ctx, "ChannelProfile", err)
	}
	return encodeResponse(channel)
}

func (s *UserServer) WatchHistory(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized request")
	}

	history, err := s.profiles.WatchHistory(ctx, user.ID)
	if err != nil {
		return nil, toStatus(ctx, "WatchHistory", err)
	}
	return encodeResponse(map[string]any{"watchHistory": history})
}

// ValidateToken reports whether an access token is currently valid. Invalid
// tokens are a normal answer, not an error.
func (s *UserServer) ValidateToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req types.ValidateTokenRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	user, err := s.sessions.Authenticate(ctx, req.AccessToken)
	if err != nil {
		if apperror.IsType(err, apperror.TypeUnauthorized) {
			logrus.Debug("Validate token failed (grpc)")
			return encodeResponse(map[string]any{"valid": false})
		}
		return nil, toStatus(ctx, "ValidateToken", err)
	}

	logrus.WithField("user_id", user.ID).Debug("Validate token succeeded (grpc)")
	return encodeResponse(map[string]any{"valid": true, "user": user})
}
