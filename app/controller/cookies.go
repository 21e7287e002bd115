package controller

import (
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"

	"github.com/labstack/echo/v4"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

func setAuthCookies(ctx echo.Context, pair dto.TokenPair, secure bool, accessTTL, refreshTTL time.Duration) {
	ctx.SetCookie(authCookie(accessTokenCookie, pair.AccessToken, secure, int(accessTTL.Seconds())))
	ctx.SetCookie(authCookie(refreshTokenCookie, pair.RefreshToken, secure, int(refreshTTL.Seconds())))
}

func clearAuthCookies(ctx echo.Context, secure bool) {
	ctx.SetCookie(authCookie(accessTokenCookie, "", secure, -1))
	ctx.SetCookie(authCookie(refreshTokenCookie, "", secure, -1))
}

func authCookie(name, value string, secure bool, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
