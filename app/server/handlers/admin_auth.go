package handlers

import (
	"fmt"

	"github.com/Welluable/front-row/app/server/errs"
	"github.com/Welluable/front-row/app/server/gateway"
	"github.com/labstack/echo/v4"
)

// authAdmin 每个请求都重新校验，不保留任何会话
func (a *App) authAdmin(c echo.Context) error {
	// 提取 token
	token, ok := gateway.BearerToken(c.Request().Header.Get("Authorization"))
	if !ok {
		return errs.ErrUnauthorized
	}

	// 验证 token
	authorized, err := a.admin.Authorize(c.Request().Context(), token)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if !authorized {
		return errs.ErrUnauthorized
	}

	return nil
}
