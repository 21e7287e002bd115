package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/apperror"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db pinger
}

func NewHealthController(db pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Health(ctx echo.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		return apperror.Internal("database unavailable", err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewResponse(http.StatusOK, map[string]string{"status": "ok"}, "OK"))
}
