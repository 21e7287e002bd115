package middleware

import (
	"net/http"
	"time"

	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

// NewRateLimiter limits requests per client IP. Rejections use the error
// envelope with status 429.
func NewRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(
		echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(
				http.StatusTooManyRequests, "rate limit exceeded", nil,
			))
		},
	})
}
