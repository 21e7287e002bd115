package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	sessions service.SessionService
	accounts service.AccountService
	cfg      *config.Config
}

func NewUserController(sessions service.SessionService, accounts service.AccountService, cfg *config.Config) *UserController {
	return &UserController{
		sessions: sessions,
		accounts: accounts,
		cfg:      cfg,
	}
}

func (c *UserController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return apperror.Validation("invalid request body")
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Register validation failed")
		return apperror.Validation(err.Error())
	}

	avatarPath, err := stageFile(ctx, "avatar", c.cfg.Upload)
	if err != nil {
		return err
	}
	defer removeStaged(avatarPath)

	coverPath, err := stageFile(ctx, "coverImage", c.cfg.Upload)
	if err != nil {
		return err
	}
	defer removeStaged(coverPath)

	req.AvatarPath = avatarPath
	req.CoverImagePath = coverPath

	logrus.WithField("username", req.Username).Info("Register request received")
	user, err := c.accounts.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return ctx.JSON(http.StatusCreated, httpdto.NewResponse(http.StatusCreated, user, "User registered successfully"))
}

func (c *UserController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return apperror.Validation("invalid request body")
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Login validation failed")
		return apperror.Validation(err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"username": req.Username,
		"email":    req.Email,
	}).Info("Login request received")
	result, err := c.sessions.Login(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	setAuthCookies(ctx, result.TokenPair, c.cfg.Cookie.Secure, c.cfg.JWT.AccessTokenTTL, c.cfg.JWT.RefreshTokenTTL)

	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, result, "User logged in successfully"))
}

func (c *UserController) RefreshToken(ctx echo.Context) error {
	req, err := types.NewRefreshTokenRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind refresh token request")
		return apperror.Unauthorized("unauthorized request")
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Refresh token missing")
		return apperror.Unauthorized("unauthorized request")
	}

	logrus.Info("Refresh token request received")
	pair, err := c.sessions.Refresh(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	setAuthCookies(ctx, *pair, c.cfg.Cookie.Secure, c.cfg.JWT.AccessTokenTTL, c.cfg.JWT.RefreshTokenTTL)

	logrus.Info("Refresh token successful")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, pair, "Access token refreshed"))
}

func (c *UserController) Logout(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Logout request received")
	if err = c.sessions.Logout(ctx.Request().Context(), userID); err != nil {
		return err
	}

	clearAuthCookies(ctx, c.cfg.Cookie.Secure)

	logrus.WithField("user_id", userID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, map[string]any{}, "User logged out"))
}

func (c *UserController) ChangePassword(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	req, err := types.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind change password request")
		return apperror.Validation("invalid request body")
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("user_id", userID).Debug("Change password validation failed")
		return apperror.Validation(err.Error())
	}

	logrus.WithField("user_id", userID).Info("Change password request received")
	if err = c.sessions.ChangePassword(ctx.Request().Context(), userID, req); err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Password changed")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, map[string]any{}, "Password changed successfully"))
}

func (c *UserController) CurrentUser(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	user, err := c.accounts.CurrentUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, user, "Current user fetched successfully"))
}

func (c *UserController) UpdateAccount(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	req, err := types.NewUpdateAccountRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update account request")
		return apperror.Validation("invalid request body")
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("user_id", userID).Debug("Update account validation failed")
		return apperror.Validation(err.Error())
	}

	logrus.WithField("user_id", userID).Info("Update account request received")
	user, err := c.accounts.UpdateAccountDetails(ctx.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Account details updated")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, user, "Account details updated successfully"))
}

func (c *UserController) UpdateAvatar(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	path, err := stageFile(ctx, "avatar", c.cfg.Upload)
	if err != nil {
		return err
	}
	defer removeStaged(path)

	logrus.WithField("user_id", userID).Info("Update avatar request received")
	user, err := c.accounts.UpdateAvatar(ctx.Request().Context(), userID, path)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Avatar updated")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, user, "Avatar updated successfully"))
}

func (c *UserController) UpdateCoverImage(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	path, err := stageFile(ctx, "coverImage", c.cfg.Upload)
	if err != nil {
		return err
	}
	defer removeStaged(path)

	logrus.WithField("user_id", userID).Info("Update cover image request received")
	user, err := c.accounts.UpdateCoverImage(ctx.Request().Context(), userID, path)
	if err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Cover image updated")
	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, user, "Cover image updated successfully"))
}

func currentUserID(ctx echo.Context) (uint64, error) {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		logrus.Warn("Missing user_id in context")
		return 0, apperror.Unauthorized("unauthorized request")
	}
	return userID, nil
}
