package handlers

import (
	"errors"
	"net/http"

	"github.com/Welluable/front-row/app/server/errs"
	"github.com/labstack/echo/v4"
)

type DeleteUserRequest struct {
	ID string `json:"id"`
}

func (a *App) ListUsers(c echo.Context) error {
	if err := a.authAdmin(c); err != nil {
		return a.fail(c, err)
	}

	signups, err := a.admin.List(c.Request().Context())
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, signups)
}

func (a *App) DeleteUser(c echo.Context) error {
	if err := a.authAdmin(c); err != nil {
		return a.fail(c, err)
	}

	var req DeleteUserRequest
	if err := c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest, "Missing id")
	}

	if err := a.admin.Delete(c.Request().Context(), req.ID); err != nil {
		if errors.Is(err, errs.ErrInvalidInput) {
			return a.er(c, http.StatusBadRequest, "Missing id")
		}
		return a.fail(c, err)
	}

	return a.ok(c)
}
