package middlewares

import (
	"net/http"
	"strconv"

	"github.com/Welluable/front-row/app/server/ratelimit"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Allower interface {
	Allow(key string) ratelimit.Decision
}

type KeyFunc func(r *http.Request) string

// AdminThrottle 按客户端限制管理接口的请求频率，limiter 为 nil 时不限制
func AdminThrottle(l *zap.Logger, limiter Allower, keyFn KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}

		return func(c echo.Context) error {
			key := keyFn(c.Request())

			dec := limiter.Allow(key)
			if !dec.Allowed {
				l.Warn("admin request throttled",
					zap.String("key", key),
					zap.String("path", c.Request().URL.Path),
				)

				secs := dec.RetryAfterSeconds()
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":      "Too many attempts",
					"retryAfter": secs,
				})
			}

			// 继续处理
			return next(c)
		}
	}
}
