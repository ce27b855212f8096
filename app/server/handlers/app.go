package handlers

import (
	"context"

	"github.com/Welluable/front-row/app/server/gateway"
	"github.com/Welluable/front-row/app/server/intake"
	"github.com/Welluable/front-row/app/server/ratelimit"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Intake interface {
	Submit(ctx context.Context, p intake.Payload) error
}

type Admin interface {
	Authorize(ctx context.Context, token string) (bool, error)
	List(ctx context.Context) ([]gateway.SignupView, error)
	Delete(ctx context.Context, id string) error
}

type App struct {
	l      *zap.Logger          // 日志
	intake Intake               // 报名处理
	admin  Admin                // 管理接口
	stats  ratelimit.StatsStore // 报名结果统计
}

func NewApp(l *zap.Logger, in Intake, admin Admin, stats ratelimit.StatsStore) *App {
	return &App{
		l:      l,
		intake: in,
		admin:  admin,
		stats:  stats,
	}
}

// RegisterHandlers 绑定所有路由，adminMW 只作用于管理接口
func RegisterHandlers(e *echo.Echo, a *App, adminMW ...echo.MiddlewareFunc) {
	e.GET("/healthz", a.HealthCheck)

	e.POST("/waitlist", a.PostWaitlist)

	g := e.Group("/admin", adminMW...)
	g.GET("/users", a.ListUsers)
	g.DELETE("/users", a.DeleteUser)
	g.GET("/stats", a.GetStats)
}
