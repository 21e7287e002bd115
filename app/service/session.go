package service

import (
	"context"
	"crypto/subtle"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/token"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"golang.org/x/crypto/bcrypt"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetRefreshToken(ctx context.Context, userID uint64, token string) error
	RotateRefreshToken(ctx context.Context, userID uint64, current, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID uint64) error
}

type tokenService interface {
	IssueAccessToken(identity token.Identity) (string, error)
	IssueRefreshToken(identity token.Identity) (string, error)
	VerifyAccessToken(tokenString string) (*token.AccessClaims, error)
	VerifyRefreshToken(tokenString string) (*token.RefreshClaims, error)
}

type SessionService interface {
	Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error)
	Refresh(ctx context.Context, req *types.RefreshTokenRequest) (*dto.TokenPair, error)
	Logout(ctx context.Context, userID uint64) error
	ChangePassword(ctx context.Context, userID uint64, req *types.ChangePasswordRequest) error
	Authenticate(ctx context.Context, accessToken string) (*dto.UserView, error)
}

type sessionService struct {
	userRepo sessionRepository
	tokens   tokenService
	cfg      *config.Config
}

func NewSessionService(userRepo sessionRepository, tokens tokenService, cfg *config.Config) SessionService {
	return &sessionService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

func (s *sessionService) Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error) {
	if req.Username == "" && req.Email == "" {
		return nil, apperror.Validation("username or email is required")
	}
	if req.Password == "" {
		return nil, apperror.Validation("password is required")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user does not exist")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid user credentials")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, apperror.Internal("failed to persist refresh token", err)
	}

	return &dto.LoginResult{
		User:      repository.Sanitize(user),
		TokenPair: *pair,
	}, nil
}

// Refresh exchanges the current refresh token for a new pair. A token that
// verifies but no longer matches the stored one is treated as replayed.
func (s *sessionService) Refresh(ctx context.Context, req *types.RefreshTokenRequest) (*dto.TokenPair, error) {
	if req.RefreshToken == "" {
		return nil, apperror.Unauthorized("unauthorized request")
	}

	claims, err := s.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	if !user.RefreshToken.Valid || subtle.ConstantTimeCompare([]byte(user.RefreshToken.String), []byte(req.RefreshToken)) != 1 {
		return nil, apperror.Unauthorized("refresh token is expired or used")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	rotated, err := s.userRepo.RotateRefreshToken(ctx, user.ID, req.RefreshToken, pair.RefreshToken)
	if err != nil {
		return nil, apperror.Internal("failed to persist refresh token", err)
	}
	if !rotated {
		return nil, apperror.Unauthorized("refresh token is expired or used")
	}

	return pair, nil
}

func (s *sessionService) Logout(ctx context.Context, userID uint64) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return apperror.Internal("failed to clear refresh token", err)
	}
	return nil
}

func (s *sessionService) ChangePassword(ctx context.Context, userID uint64, req *types.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperror.Unauthorized("invalid old password")
	}

	if req.NewPassword == "" {
		return apperror.Validation("new password is required")
	}
	if err = s.cfg.Password.Policy.Validate(req.NewPassword); err != nil {
		return apperror.Validation(err.Error())
	}

	user.SetPassword(req.NewPassword)
	if err = s.userRepo.Update(ctx, user); err != nil {
		return apperror.Internal("failed to update password", err)
	}
	return nil
}

func (s *sessionService) Authenticate(ctx context.Context, accessToken string) (*dto.UserView, error) {
	if accessToken == "" {
		return nil, apperror.Unauthorized("unauthorized request")
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid access token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid access token")
	}

	return repository.Sanitize(user), nil
}

func (s *sessionService) issuePair(user *entity.User) (*dto.TokenPair, error) {
	identity := token.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Fullname: user.Fullname,
	}

	accessToken, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, apperror.Internal("failed to generate access token", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, apperror.Internal("failed to generate refresh token", err)
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
