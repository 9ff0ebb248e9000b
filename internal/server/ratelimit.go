package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiter is one token bucket shared by all callers of a route. Telegram is the
// only legitimate caller, so per-IP buckets buy nothing.
type limiter struct {
	bucket *rate.Limiter
	rate   rate.Limit
}

func newLimiter(r rate.Limit, burst int) *limiter {
	if r <= 0 {
		return &limiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiter{bucket: rate.NewLimiter(r, burst), rate: r}
}

func (l *limiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.bucket != nil && !l.bucket.Allow() {
				retryAfter := max(int(1.0/float64(l.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
