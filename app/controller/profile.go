package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ProfileController struct {
	profiles service.ProfileService
}

func NewProfileController(profiles service.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

func (c *ProfileController) ChannelProfile(ctx echo.Context) error {
	viewerID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	req := types.NewChannelProfileRequestFromContext(ctx)
	if err = req.Validate(); err != nil {
		return apperror.Validation(err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"viewer_id": viewerID,
		"channel":   req.Username,
	}).Debug("Channel profile requested")
	channel, err := c.profiles.ChannelProfile(ctx.Request().Context(), req.Username, viewerID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, channel, "User channel fetched successfully"))
}

func (c *ProfileController) WatchHistory(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	history, err := c.profiles.WatchHistory(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, history, "Watch history fetched successfully"))
}
