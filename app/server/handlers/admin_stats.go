package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetStats 返回各报名结果的累计次数
func (a *App) GetStats(c echo.Context) error {
	if err := a.authAdmin(c); err != nil {
		return a.fail(c, err)
	}

	snapshot, err := a.stats.Snapshot(c.Request().Context())
	if err != nil {
		a.l.Error("failed to read intake stats", zap.Error(err))
		return a.er(c, http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, snapshot)
}
