package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Welluable/front-row/app/server/errs"
	"github.com/labstack/echo/v4"
)

type ErrorMessage struct {
	Error      string `json:"error"`
	RetryAfter *int   `json:"retryAfter,omitempty"`
}

type SuccessMessage struct {
	Success bool `json:"success"`
}

func (a *App) er(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &ErrorMessage{
		Error: message,
	})
}

func (a *App) ok(c echo.Context) error {
	return c.JSON(http.StatusOK, &SuccessMessage{
		Success: true,
	})
}

// statusFor 错误类型到状态码与提示信息的唯一映射
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		return http.StatusBadRequest, "Invalid"
	case errors.Is(err, errs.ErrTooFast), errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many attempts"
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid email"
	case errors.Is(err, errs.ErrDuplicate):
		return http.StatusConflict, "Already on waitlist"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// fail 按错误类型返回，限流时带上 Retry-After
func (a *App) fail(c echo.Context, err error) error {
	status, message := statusFor(err)

	var rl *errs.RateLimitedError
	if errors.As(err, &rl) {
		secs := rl.RetryAfterSeconds()
		c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		return c.JSON(status, &ErrorMessage{
			Error:      message,
			RetryAfter: &secs,
		})
	}

	return a.er(c, status, message)
}
