package service

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
)

type profileRepository interface {
	ChannelProfile(ctx context.Context, username string, viewerID uint64) (*entity.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uint64) ([]entity.WatchedVideo, error)
}

type ProfileService interface {
	ChannelProfile(ctx context.Context, username string, viewerID uint64) (*dto.ChannelView, error)
	WatchHistory(ctx context.Context, userID uint64) ([]dto.WatchedVideoView, error)
}

type profileService struct {
	profileRepo profileRepository
}

func NewProfileService(profileRepo profileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) ChannelProfile(ctx context.Context, username string, viewerID uint64) (*dto.ChannelView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("username is missing")
	}

	profile, err := s.profileRepo.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, apperror.Internal("failed to load channel", err)
	}
	if profile == nil {
		return nil, apperror.NotFound("channel does not exist")
	}

	return &dto.ChannelView{
		Fullname:                  profile.Fullname,
		Username:                  profile.Username,
		Email:                     profile.Email,
		Avatar:                    profile.Avatar,
		CoverImage:                profile.CoverImage,
		SubscribersCount:          profile.SubscribersCount,
		ChannelsSubscribedToCount: profile.ChannelsSubscribedToCount,
		IsSubscribed:              profile.IsSubscribed,
	}, nil
}

func (s *profileService) WatchHistory(ctx context.Context, userID uint64) ([]dto.WatchedVideoView, error) {
	videos, err := s.profileRepo.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to load watch history", err)
	}

	views := make([]dto.WatchedVideoView, 0, len(videos))
	for _, item := range videos {
		view := dto.WatchedVideoView{
			ID:        item.Video.ID,
			Title:     item.Video.Title,
			Thumbnail: item.Video.Thumbnail,
			Duration:  item.Video.Duration,
			Views:     item.Video.Views,
			CreatedAt: item.Video.CreatedAt,
		}
		if item.Owner != nil {
			view.Owner = &dto.OwnerView{
				Fullname: item.Owner.Fullname,
				Username: item.Owner.Username,
				Avatar:   item.Owner.Avatar,
			}
		}
		views = append(views, view)
	}
	return views, nil
}
