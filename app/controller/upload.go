package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// stageFile copies the multipart file named field into the upload temp dir and
// returns its local path. A request without that file yields an empty path.
func stageFile(ctx echo.Context, field string, cfg config.UploadConfig) (string, error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", apperror.Validation("invalid multipart request")
	}
	if cfg.MaxBytes > 0 && header.Size > cfg.MaxBytes {
		return "", apperror.Validation(fmt.Sprintf("%s exceeds the maximum size of %d bytes", field, cfg.MaxBytes))
	}

	src, err := header.Open()
	if err != nil {
		return "", apperror.Internal("failed to read uploaded file", err)
	}
	defer src.Close()

	dir := cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return "", apperror.Internal("failed to prepare upload directory", err)
	}

	dst, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", apperror.Internal("failed to stage uploaded file", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		removeStaged(dst.Name())
		return "", apperror.Internal("failed to stage uploaded file", err)
	}

	return dst.Name(), nil
}

// removeStaged deletes a staged file the uploader did not consume.
func removeStaged(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).WithField("path", path).Warn("Failed to remove staged upload")
	}
}
