package controller

import (
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler renders any error returned by a handler or middleware as
// the error envelope.
func HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	status, message, details := resolveError(err)

	entry := logrus.WithFields(logrus.Fields{
		"method": ctx.Request().Method,
		"uri":    ctx.Request().RequestURI,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("Request failed")
	} else {
		entry.WithField("reason", message).Warn("Request rejected")
	}

	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(status)
	} else {
		err = ctx.JSON(status, httpdto.NewErrorResponse(status, message, details))
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to write error response")
	}
}

func resolveError(err error) (int, string, []string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Message, appErr.Details
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok && text != "" {
			message = text
		}
		return httpErr.Code, message, nil
	}

	internal := apperror.From(err)
	return internal.HTTPStatus(), internal.Message, nil
}
