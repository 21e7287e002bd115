package service

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/storage"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/sirupsen/logrus"
)

type accountRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateAvatar(ctx context.Context, userID uint64, url string) error
	UpdateCoverImage(ctx context.Context, userID uint64, url string) error
	UpdateAccountDetails(ctx context.Context, userID uint64, fullname, email string) error
}

type AccountService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*dto.UserView, error)
	CurrentUser(ctx context.Context, userID uint64) (*dto.UserView, error)
	UpdateAvatar(ctx context.Context, userID uint64, localPath string) (*dto.UserView, error)
	UpdateCoverImage(ctx context.Context, userID uint64, localPath string) (*dto.UserView, error)
	UpdateAccountDetails(ctx context.Context, userID uint64, req *types.UpdateAccountRequest) (*dto.UserView, error)
}

type accountService struct {
	userRepo accountRepository
	uploader storage.Uploader
	cfg      *config.Config
}

func NewAccountService(userRepo accountRepository, uploader storage.Uploader, cfg *config.Config) AccountService {
	return &accountService{
		userRepo: userRepo,
		uploader: uploader,
		cfg:      cfg,
	}
}

func (s *accountService) Register(ctx context.Context, req *types.RegisterRequest) (*dto.UserView, error) {
	if req.Username == "" || req.Email == "" || req.Fullname == "" || req.Password == "" {
		return nil, apperror.Validation("all fields are required")
	}
	if err := s.cfg.Password.Policy.Validate(req.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperror.Internal("failed to check existing user", err)
	}
	if exists {
		return nil, apperror.Conflict("user with email or username already exists")
	}

	if req.AvatarPath == "" {
		return nil, apperror.Validation("avatar file is required")
	}

	avatar, err := s.uploader.Upload(ctx, req.AvatarPath)
	if err != nil {
		return nil, apperror.Internal("failed to upload avatar", err)
	}

	uploaded := []string{avatar.Key}
	coverImage := ""
	if req.CoverImagePath != "" {
		cover, err := s.uploader.Upload(ctx, req.CoverImagePath)
		if err != nil {
			logrus.WithError(err).WithField("username", req.Username).Warn("Cover image upload failed, continuing without it")
		} else {
			coverImage = cover.URL
			uploaded = append(uploaded, cover.Key)
		}
	}

	user := &entity.User{
		Username:   req.Username,
		Email:      req.Email,
		Fullname:   req.Fullname,
		Avatar:     avatar.URL,
		CoverImage: coverImage,
	}
	user.SetPassword(req.Password)

	if err = s.userRepo.Create(ctx, user); err != nil {
		s.discardUploads(ctx, uploaded)
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.Conflict("user with email or username already exists")
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	created, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to load created user", err)
	}
	if created == nil {
		return nil, apperror.Internal("something went wrong while registering the user", nil)
	}

	return repository.Sanitize(created), nil
}

func (s *accountService) CurrentUser(ctx context.Context, userID uint64) (*dto.UserView, error) {
	return s.loadView(ctx, userID)
}

func (s *accountService) UpdateAvatar(ctx context.Context, userID uint64, localPath string) (*dto.UserView, error) {
	if localPath == "" {
		return nil, apperror.Validation("avatar file is missing")
	}

	result, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, apperror.Internal("failed to upload avatar", err)
	}

	if err = s.userRepo.UpdateAvatar(ctx, userID, result.URL); err != nil {
		return nil, apperror.Internal("failed to update avatar", err)
	}

	return s.loadView(ctx, userID)
}

func (s *accountService) UpdateCoverImage(ctx context.Context, userID uint64, localPath string) (*dto.UserView, error) {
	if localPath == "" {
		return nil, apperror.Validation("cover image file is missing")
	}

	result, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, apperror.Internal("failed to upload cover image", err)
	}

	if err = s.userRepo.UpdateCoverImage(ctx, userID, result.URL); err != nil {
		return nil, apperror.Internal("failed to update cover image", err)
	}

	return s.loadView(ctx, userID)
}

func (s *accountService) UpdateAccountDetails(ctx context.Context, userID uint64, req *types.UpdateAccountRequest) (*dto.UserView, error) {
	if req.Fullname == "" || req.Email == "" {
		return nil, apperror.Validation("fullname and email are required")
	}

	if err := s.userRepo.UpdateAccountDetails(ctx, userID, req.Fullname, req.Email); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperror.Conflict("email is already in use")
		}
		return nil, apperror.Internal("failed to update account details", err)
	}

	return s.loadView(ctx, userID)
}

// discardUploads removes media stored for a registration that did not
// persist. Failures are logged and otherwise ignored.
func (s *accountService) discardUploads(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.uploader.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to remove orphaned upload")
		}
	}
}

func (s *accountService) loadView(ctx context.Context, userID uint64) (*dto.UserView, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return repository.Sanitize(user), nil
}
