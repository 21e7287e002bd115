package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
)

const userColumns = `id, username, email, fullname, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`

type UserRepository struct {
	db     DBTX
	hasher PasswordHasher
}

func NewUserRepository(db DBTX, hasher PasswordHasher) *UserRepository {
	return &UserRepository{db: db, hasher: hasher}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.hashPendingPassword(user); err != nil {
		return err
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	query := `
		INSERT INTO users (username, email, fullname, avatar, cover_image, password_hash, refresh_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.Fullname,
		user.Avatar,
		user.CoverImage,
		user.PasswordHash,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateUser
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.findOne(ctx, query, username)
}

// FindByUsernameOrEmail matches a user whose username or email equals the
// given values. Empty values never match.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE (username = ? AND username <> '') OR (email = ? AND email <> '') ORDER BY id LIMIT 1`
	return r.findOne(ctx, query, username, email)
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update persists profile fields and, when a new password was staged with
// SetPassword, its hash. An unchanged hash is written back as is.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	if err := r.hashPendingPassword(user); err != nil {
		return err
	}

	query := `
		UPDATE users SET
			username = ?,
			email = ?,
			fullname = ?,
			avatar = ?,
			cover_image = ?,
			password_hash = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.Fullname,
		user.Avatar,
		user.CoverImage,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil && isDuplicateEntry(err) {
		return ErrDuplicateUser
	}
	return err
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID uint64, url string) error {
	query := `UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, url, time.Now(), userID)
	return err
}

func (r *UserRepository) UpdateCoverImage(ctx context.Context, userID uint64, url string) error {
	query := `UPDATE users SET cover_image = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, url, time.Now(), userID)
	return err
}

func (r *UserRepository) UpdateAccountDetails(ctx context.Context, userID uint64, fullname, email string) error {
	query := `UPDATE users SET fullname = ?, email = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, fullname, email, time.Now(), userID)
	if err != nil && isDuplicateEntry(err) {
		return ErrDuplicateUser
	}
	return err
}

// SetRefreshToken overwrites whatever refresh token is stored for the user.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID uint64, token string) error {
	query := `UPDATE users SET refresh_token = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, token, userID)
	return err
}

// RotateRefreshToken replaces the stored token only if it still equals
// current. It reports false when another writer got there first.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID uint64, current, next string) (bool, error) {
	query := `UPDATE users SET refresh_token = ? WHERE id = ? AND refresh_token = ?`
	result, err := r.db.ExecContext(ctx, query, next, userID, current)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID uint64) error {
	query := `UPDATE users SET refresh_token = NULL WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := r.watchHistoryIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.WatchHistory = history
	return user, nil
}

func (r *UserRepository) watchHistoryIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	query := `SELECT video_id FROM watch_history WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *UserRepository) hashPendingPassword(user *entity.User) error {
	if !user.PasswordChanged() {
		return nil
	}

	hash, err := r.hasher.Hash(user.PendingPassword())
	if err != nil {
		return err
	}
	user.ApplyPasswordHash(hash)
	return nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Fullname,
		&user.Avatar,
		&user.CoverImage,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Sanitize projects a user onto its public view.
func Sanitize(user *entity.User) *dto.UserView {
	if user == nil {
		return nil
	}

	history := user.WatchHistory
	if history == nil {
		history = []uint64{}
	}

	return &dto.UserView{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Fullname:     user.Fullname,
		Avatar:       user.Avatar,
		CoverImage:   user.CoverImage,
		WatchHistory: history,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
