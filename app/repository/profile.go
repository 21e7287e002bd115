package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// ChannelProfile loads the channel owned by username together with its
// subscription counters. IsSubscribed reports whether viewerID subscribes to
// the channel. Returns (nil, nil) when no such user exists.
func (r *ProfileRepository) ChannelProfile(ctx context.Context, username string, viewerID uint64) (*entity.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.email, u.fullname, u.avatar, u.cover_image,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
		       EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS is_subscribed
		FROM users u
		WHERE u.username = ?
	`
	profile := &entity.ChannelProfile{}
	err := r.db.QueryRowContext(ctx, query, viewerID, username).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Fullname,
		&profile.Avatar,
		&profile.CoverImage,
		&profile.SubscribersCount,
		&profile.ChannelsSubscribedToCount,
		&profile.IsSubscribed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// WatchHistory returns the videos watched by userID in viewing order,
// repeats included. Owner is nil when the video's owner no longer exists.
func (r *ProfileRepository) WatchHistory(ctx context.Context, userID uint64) ([]entity.WatchedVideo, error) {
	query := `
		SELECT v.id, v.owner_id, v.title, v.thumbnail, v.duration, v.views, v.created_at,
		       o.username, o.fullname, o.avatar
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		LEFT JOIN users o ON o.id = v.owner_id
		WHERE wh.user_id = ?
		ORDER BY wh.id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := make([]entity.WatchedVideo, 0)
	for rows.Next() {
		var (
			item          entity.WatchedVideo
			ownerUsername sql.NullString
			ownerFullname sql.NullString
			ownerAvatar   sql.NullString
		)
		if err := rows.Scan(
			&item.Video.ID,
			&item.Video.OwnerID,
			&item.Video.Title,
			&item.Video.Thumbnail,
			&item.Video.Duration,
			&item.Video.Views,
			&item.Video.CreatedAt,
			&ownerUsername,
			&ownerFullname,
			&ownerAvatar,
		); err != nil {
			return nil, err
		}
		if ownerUsername.Valid {
			item.Owner = &entity.VideoOwner{
				Username: ownerUsername.String,
				Fullname: ownerFullname.String,
				Avatar:   ownerAvatar.String,
			}
		}
		videos = append(videos, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}
