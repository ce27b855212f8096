package handlers

import (
	"net/http"

	"github.com/Welluable/front-row/app/server/intake"
	"github.com/labstack/echo/v4"
)

type WaitlistRequest struct {
	Email    string  `json:"email"`
	Honeypot string  `json:"_hp"`
	Source   *string `json:"source"`
	Loaded   int64   `json:"_loadedAt"`
	Submit   int64   `json:"_t"`
}

func (a *App) PostWaitlist(c echo.Context) error {
	var req WaitlistRequest
	if err := c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest, "Invalid")
	}

	if err := a.intake.Submit(c.Request().Context(), intake.Payload{
		Email:       req.Email,
		Honeypot:    req.Honeypot,
		Source:      req.Source,
		LoadedAt:    req.Loaded,
		SubmittedAt: req.Submit,
		ClientIP:    ClientIP(c.Request()),
	}); err != nil {
		return a.fail(c, err)
	}

	return a.ok(c)
}
