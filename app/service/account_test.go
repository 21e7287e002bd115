package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"golang.org/x/crypto/bcrypt"
)

func registerRequest() *types.RegisterRequest {
	return &types.RegisterRequest{
		Username:       "jane",
		Email:          "jane@example.com",
		Password:       "s3cret-pass",
		Fullname:       "Jane Doe",
		AvatarPath:     "avatar.png",
		CoverImagePath: "cover.png",
	}
}

func TestRegister(t *testing.T) {
	store := newMemoryUserStore()
	uploader := &fakeUploader{}
	svc := service.NewAccountService(store, uploader, testConfig())

	view, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.ID == 0 || view.Username != "jane" || view.Email != "jane@example.com" || view.Fullname != "Jane Doe" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Avatar != "http://cdn/media/avatar.png" || view.CoverImage != "http://cdn/media/cover.png" {
		t.Fatalf("unexpected media urls: %q %q", view.Avatar, view.CoverImage)
	}

	stored := store.stored(view.ID)
	if stored.PasswordHash == "s3cret-pass" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("expected stored hash to verify: %v", err)
	}
	if stored.RefreshToken.Valid {
		t.Fatalf("expected no refresh token after registration")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newMemoryUserStore()
	store.seed("jane", "other@example.com", "Jane", "s3cret-pass")
	store.seed("john", "jane@example.com", "John", "s3cret-pass")
	uploader := &fakeUploader{}
	svc := service.NewAccountService(store, uploader, testConfig())

	byUsername := registerRequest()
	byUsername.Email = "fresh@example.com"
	_, err := svc.Register(context.Background(), byUsername)
	expectType(t, err, apperror.TypeConflict)

	byEmail := registerRequest()
	byEmail.Username = "fresh"
	_, err = svc.Register(context.Background(), byEmail)
	expectType(t, err, apperror.TypeConflict)

	if len(uploader.calls) != 0 {
		t.Fatalf("expected no uploads for conflicting registration, got %v", uploader.calls)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := service.NewAccountService(newMemoryUserStore(), &fakeUploader{}, testConfig())
	ctx := context.Background()

	missing := registerRequest()
	missing.Fullname = ""
	_, err := svc.Register(ctx, missing)
	expectType(t, err, apperror.TypeValidation)

	weak := registerRequest()
	weak.Password = "abc"
	_, err = svc.Register(ctx, weak)
	expectType(t, err, apperror.TypeValidation)

	noAvatar := registerRequest()
	noAvatar.AvatarPath = ""
	_, err = svc.Register(ctx, noAvatar)
	expectType(t, err, apperror.TypeValidation)
}

func TestRegisterAvatarUploadFailure(t *testing.T) {
	store := newMemoryUserStore()
	uploader := &fakeUploader{failFor: map[string]bool{"avatar.png": true}}
	svc := service.NewAccountService(store, uploader, testConfig())

	_, err := svc.Register(context.Background(), registerRequest())
	expectType(t, err, apperror.TypeInternal)
	if exists, _ := store.ExistsByUsernameOrEmail(context.Background(), "jane", "jane@example.com"); exists {
		t.Fatalf("expected no user to be created")
	}
}

func TestRegisterToleratesCoverUploadFailure(t *testing.T) {
	uploader := &fakeUploader{failFor: map[string]bool{"cover.png": true}}
	svc := service.NewAccountService(newMemoryUserStore(), uploader, testConfig())

	view, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.CoverImage != "" {
		t.Fatalf("expected empty cover image, got %q", view.CoverImage)
	}
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	store := newMemoryUserStore()
	uploader := &fakeUploader{}
	svc := service.NewAccountService(store, uploader, testConfig())

	req := registerRequest()
	req.Password = strings.Repeat("p", config.MaxPasswordBytes+8)
	_, err := svc.Register(context.Background(), req)
	expectType(t, err, apperror.TypeValidation)

	if len(uploader.calls) != 0 {
		t.Fatalf("expected no uploads for rejected password, got %v", uploader.calls)
	}
	if store.hashCalls != 0 {
		t.Fatalf("expected no hashing, got %d calls", store.hashCalls)
	}

	req = registerRequest()
	req.Password = strings.Repeat("p", config.MaxPasswordBytes)
	if _, err = svc.Register(context.Background(), req); err != nil {
		t.Fatalf("expected %d byte password to register, got %v", config.MaxPasswordBytes, err)
	}
}

func TestRegisterRemovesUploadsWhenCreateFails(t *testing.T) {
	cases := []struct {
		name      string
		createErr error
		deleteErr error
		errType   apperror.Type
	}{
		{name: "duplicate race", createErr: repository.ErrDuplicateUser, errType: apperror.TypeConflict},
		{name: "store failure", createErr: errStoreDown, errType: apperror.TypeInternal},
		{name: "delete failure is ignored", createErr: errStoreDown, deleteErr: errors.New("bucket unavailable"), errType: apperror.TypeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryUserStore()
			store.createErr = tc.createErr
			uploader := &fakeUploader{deleteErr: tc.deleteErr}
			svc := service.NewAccountService(store, uploader, testConfig())

			_, err := svc.Register(context.Background(), registerRequest())
			expectType(t, err, tc.errType)

			if tc.deleteErr != nil {
				return
			}
			if len(uploader.deleted) != 2 || uploader.deleted[0] != "media/avatar.png" || uploader.deleted[1] != "media/cover.png" {
				t.Fatalf("expected both uploads removed, got %v", uploader.deleted)
			}
		})
	}
}

func TestRegisterKeepsUploadsOnSuccess(t *testing.T) {
	uploader := &fakeUploader{}
	svc := service.NewAccountService(newMemoryUserStore(), uploader, testConfig())

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if len(uploader.deleted) != 0 {
		t.Fatalf("expected no deletes, got %v", uploader.deleted)
	}
}

func TestRegisterWithoutCover(t *testing.T) {
	uploader := &fakeUploader{}
	svc := service.NewAccountService(newMemoryUserStore(), uploader, testConfig())

	req := registerRequest()
	req.CoverImagePath = ""
	view, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.CoverImage != "" || len(uploader.calls) != 1 {
		t.Fatalf("expected only avatar upload, got cover=%q calls=%v", view.CoverImage, uploader.calls)
	}
}

func TestCurrentUser(t *testing.T) {
	store := newMemoryUserStore()
	seeded := store.seed("jane", "jane@example.com", "Jane Doe", "s3cret-pass")
	svc := service.NewAccountService(store, &fakeUploader{}, testConfig())

	view, err := svc.CurrentUser(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if view.Username != "jane" {
		t.Fatalf("unexpected view: %+v", view)
	}

	_, err = svc.CurrentUser(context.Background(), 999)
	expectType(t, err, apperror.TypeNotFound)
}

func TestUpdateMedia(t *testing.T) {
	store := newMemoryUserStore()
	seeded := store.seed("jane", "jane@example.com", "Jane Doe", "s3cret-pass")
	uploader := &fakeUploader{failFor: map[string]bool{"broken.png": true}}
	svc := service.NewAccountService(store, uploader, testConfig())
	ctx := context.Background()

	view, err := svc.UpdateAvatar(ctx, seeded.ID, "new-avatar.png")
	if err != nil {
		t.Fatalf("update avatar failed: %v", err)
	}
	if view.Avatar != "http://cdn/media/new-avatar.png" {
		t.Fatalf("unexpected avatar: %s", view.Avatar)
	}

	view, err = svc.UpdateCoverImage(ctx, seeded.ID, "new-cover.png")
	if err != nil {
		t.Fatalf("update cover failed: %v", err)
	}
	if view.CoverImage != "http://cdn/media/new-cover.png" {
		t.Fatalf("unexpected cover: %s", view.CoverImage)
	}

	_, err = svc.UpdateAvatar(ctx, seeded.ID, "")
	expectType(t, err, apperror.TypeValidation)
	_, err = svc.UpdateCoverImage(ctx, seeded.ID, "")
	expectType(t, err, apperror.TypeValidation)
	_, err = svc.UpdateAvatar(ctx, seeded.ID, "broken.png")
	expectType(t, err, apperror.TypeInternal)
}

func TestUpdateAccountDetails(t *testing.T) {
	store := newMemoryUserStore()
	seeded := store.seed("jane", "jane@example.com", "Jane Doe", "s3cret-pass")
	store.seed("john", "john@example.com", "John", "s3cret-pass")
	svc := service.NewAccountService(store, &fakeUploader{}, testConfig())
	ctx := context.Background()

	view, err := svc.UpdateAccountDetails(ctx, seeded.ID, &types.UpdateAccountRequest{Fullname: "Jane Roe", Email: "roe@example.com"})
	if err != nil {
		t.Fatalf("update details failed: %v", err)
	}
	if view.Fullname != "Jane Roe" || view.Email != "roe@example.com" {
		t.Fatalf("unexpected view: %+v", view)
	}

	_, err = svc.UpdateAccountDetails(ctx, seeded.ID, &types.UpdateAccountRequest{Fullname: "Jane", Email: "john@example.com"})
	expectType(t, err, apperror.TypeConflict)

	_, err = svc.UpdateAccountDetails(ctx, seeded.ID, &types.UpdateAccountRequest{Fullname: "", Email: "x@example.com"})
	expectType(t, err, apperror.TypeValidation)
}
