package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/storage"
	"github.com/vibast-solutions/ms-go-users/config"

	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("store unavailable")

// memoryUserStore mirrors the MySQL repository semantics: unique
// username/email, hash-on-write, compare-and-swap refresh rotation.
type memoryUserStore struct {
	mu         sync.Mutex
	users      map[uint64]*entity.User
	nextID     uint64
	hasher     repository.PasswordHasher
	hashCalls  int
	failFind   bool
	rotateMiss bool
	createErr  error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users:  make(map[uint64]*entity.User),
		nextID: 1,
		hasher: repository.NewBcryptHasher(bcrypt.MinCost),
	}
}

func (s *memoryUserStore) hash(user *entity.User) error {
	if !user.PasswordChanged() {
		return nil
	}
	s.hashCalls++
	hash, err := s.hasher.Hash(user.PendingPassword())
	if err != nil {
		return err
	}
	user.ApplyPasswordHash(hash)
	return nil
}

func (s *memoryUserStore) conflicts(id uint64, username, email string) bool {
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (s *memoryUserStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if s.conflicts(0, user.Username, user.Email) {
		return repository.ErrDuplicateUser
	}
	if err := s.hash(user); err != nil {
		return err
	}
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memoryUserStore) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFind {
		return nil, errStoreDown
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *memoryUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFind {
		return nil, errStoreDown
	}
	for id := uint64(1); id < s.nextID; id++ {
		u, ok := s.users[id]
		if !ok {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conflicts(0, username, email), nil
}

func (s *memoryUserStore) Update(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return nil
	}
	if s.conflicts(user.ID, user.Username, user.Email) {
		return repository.ErrDuplicateUser
	}
	if err := s.hash(user); err != nil {
		return err
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.Fullname = user.Fullname
	stored.Avatar = user.Avatar
	stored.CoverImage = user.CoverImage
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *memoryUserStore) UpdateAvatar(_ context.Context, userID uint64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.Avatar = url
	}
	return nil
}

func (s *memoryUserStore) UpdateCoverImage(_ context.Context, userID uint64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.CoverImage = url
	}
	return nil
}

func (s *memoryUserStore) UpdateAccountDetails(_ context.Context, userID uint64, fullname, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	if s.conflicts(userID, "", email) {
		return repository.ErrDuplicateUser
	}
	u.Fullname = fullname
	u.Email = email
	return nil
}

func (s *memoryUserStore) SetRefreshToken(_ context.Context, userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.RefreshToken = sql.NullString{String: token, Valid: true}
	}
	return nil
}

func (s *memoryUserStore) RotateRefreshToken(_ context.Context, userID uint64, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rotateMiss {
		return false, nil
	}
	u, ok := s.users[userID]
	if !ok || !u.RefreshToken.Valid || u.RefreshToken.String != current {
		return false, nil
	}
	u.RefreshToken = sql.NullString{String: next, Valid: true}
	return true, nil
}

func (s *memoryUserStore) ClearRefreshToken(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.RefreshToken = sql.NullString{}
	}
	return nil
}

func (s *memoryUserStore) stored(id uint64) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.users[id]
}

func (s *memoryUserStore) seed(username, email, fullname, password string) *entity.User {
	user := &entity.User{
		Username: username,
		Email:    email,
		Fullname: fullname,
		Avatar:   "http://cdn/" + username + ".png",
	}
	user.SetPassword(password)
	if err := s.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

type fakeUploader struct {
	mu        sync.Mutex
	calls     []string
	deleted   []string
	failFor   map[string]bool
	deleteErr error
}

func (u *fakeUploader) Upload(_ context.Context, localPath string) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if localPath == "" {
		return nil, storage.ErrNoFile
	}
	u.calls = append(u.calls, localPath)
	if u.failFor[localPath] {
		return nil, errors.New("object store unavailable")
	}
	return &storage.UploadResult{URL: "http://cdn/media/" + localPath, Key: "media/" + localPath}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.deleteErr != nil {
		return u.deleteErr
	}
	u.deleted = append(u.deleted, key)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:    "access-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshSecret:   "refresh-secret",
			RefreshTokenTTL: 24 * time.Hour,
		},
		Password: config.PasswordConfig{
			Policy: config.PasswordPolicy{
				MinLength: 6,
			},
			BcryptCost: bcrypt.MinCost,
		},
	}
}
