package middleware

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	"github.com/vibast-solutions/ms-go-users/app/dto"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const accessTokenCookie = "accessToken"

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*dto.UserView, error)
}

type AuthMiddleware struct {
	sessions authenticator
}

func NewAuthMiddleware(sessions authenticator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the caller from the accessToken cookie or, failing
// that, a Bearer authorization header. The user id and view are stored under
// "user_id" and "user".
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := accessTokenFromRequest(c)
		if err != nil {
			return err
		}

		user, err := m.sessions.Authenticate(c.Request().Context(), tokenString)
		if err != nil {
			logrus.Debug("Invalid or expired access token")
			return err
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)

		return next(c)
	}
}

func accessTokenFromRequest(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		logrus.Debug("Missing access token")
		return "", apperror.Unauthorized("unauthorized request")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logrus.Debug("Invalid authorization header format")
		return "", apperror.Unauthorized("invalid authorization header format")
	}

	return parts[1], nil
}
