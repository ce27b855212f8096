package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Welluable/front-row/app/server/apidocs"
	"github.com/Welluable/front-row/app/server/gateway"
	"github.com/Welluable/front-row/app/server/handlers"
	"github.com/Welluable/front-row/app/server/inits"
	"github.com/Welluable/front-row/app/server/intake"
	"github.com/Welluable/front-row/app/server/middlewares"
	"github.com/Welluable/front-row/app/server/password"
	"github.com/Welluable/front-row/app/server/ratelimit"
	"github.com/Welluable/front-row/app/server/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")

	// 初始化数据库连接
	db, err := inits.DB(cfg.System.DBConnectionString, !cfg.System.IsProd)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}
	inits.CountAdministrators(db, l)

	// 初始化 redis 连接，未配置时不启用
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 报名结果统计
	var stats ratelimit.StatsStore = ratelimit.NewMemoryStatsStore()
	if rdb != nil {
		stats = ratelimit.NewRedisStatsStore(rdb,
			ratelimit.WithStatsPrefix(cfg.Intake.StatsPrefix),
			ratelimit.WithStatsTTL(cfg.Intake.StatsTTL),
		)
	}

	// 报名限流
	window := ratelimit.NewFixedWindow(cfg.Intake.RateLimit, cfg.Intake.RateWindow)
	window.StartJanitor(ctx)
	l.Info("intake rate limit",
		zap.Int("limit", window.Limit()),
		zap.Duration("window", window.Window()),
	)

	// 管理接口限流
	var throttle middlewares.Allower
	if cfg.Admin.RateRPS > 0 {
		buckets := ratelimit.NewBuckets(cfg.Admin.RateRPS, cfg.Admin.RateBurst)
		buckets.StartJanitor(ctx)
		throttle = buckets
	}

	// 准备业务组件
	st := store.New(l, db, rdb, cfg.System.DBTimeout)
	svc := intake.NewService(l, st, window, stats, cfg.Intake.MinSubmit)
	gw, err := gateway.New(l, st, password.New(nil), gateway.Options{
		LegacySecret: cfg.Security.LegacyAdminPassword,
	})
	if err != nil {
		l.Fatal("error initializing admin gateway", zap.Error(err))
	}

	// 准备 handler app
	handlerApp := handlers.NewApp(l, svc, gw, stats)

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 绑定 echo 服务
	handlers.RegisterHandlers(e, handlerApp, middlewares.AdminThrottle(l, throttle, func(r *http.Request) string {
		return intake.Fingerprint(handlers.ClientIP(r))
	}))

	// 添加 API 文档
	if !cfg.System.IsProd {
		if swg, err := apidocs.GetSpec(); err != nil {
			l.Error("error initializing api document", zap.Error(err))
		} else if swgJson, err := swg.MarshalJSON(); err != nil {
			l.Error("error initializing api document", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc("/api", swgJson))
		}
	}

	// 启动 echo 服务
	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
