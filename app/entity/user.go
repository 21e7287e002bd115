package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint64
	Username     string
	Email        string
	Fullname     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	RefreshToken sql.NullString
	WatchHistory []uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	plainPassword   string
	passwordChanged bool
}

// SetPassword stages a new plaintext password. The repository hashes it on
// the next Create or Update and clears the staged value.
func (u *User) SetPassword(plain string) {
	u.plainPassword = plain
	u.passwordChanged = true
}

func (u *User) PasswordChanged() bool {
	return u.passwordChanged
}

func (u *User) PendingPassword() string {
	return u.plainPassword
}

func (u *User) ApplyPasswordHash(hash string) {
	u.PasswordHash = hash
	u.plainPassword = ""
	u.passwordChanged = false
}

type Video struct {
	ID        uint64
	OwnerID   sql.NullInt64
	Title     string
	Thumbnail string
	Duration  float64
	Views     uint64
	CreatedAt time.Time
}

// ChannelProfile is a user projected together with subscription counters
// relative to a viewer.
type ChannelProfile struct {
	ID                        uint64
	Username                  string
	Email                     string
	Fullname                  string
	Avatar                    string
	CoverImage                string
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}

type VideoOwner struct {
	Username string
	Fullname string
	Avatar   string
}

type WatchedVideo struct {
	Video Video
	Owner *VideoOwner
}
