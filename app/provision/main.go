package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Welluable/front-row/app/provision/handlers"
	"github.com/Welluable/front-row/app/provision/inits"
	"github.com/Welluable/front-row/app/server/password"
	"github.com/Welluable/front-row/app/server/store"
	"go.uber.org/zap"

	serverinits "github.com/Welluable/front-row/app/server/inits"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, inits.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 初始化配置
	cfg, err := inits.Config(os.Args[1:])
	if err != nil {
		return err
	}

	// 初始化日志
	l, err := serverinits.Logger(!cfg.IsProd)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	// 初始化数据库连接
	db, err := serverinits.DB(cfg.DBConnectionString, false)
	if err != nil {
		return fmt.Errorf("error initializing DB connection: %w", err)
	}

	// 初始化 redis 连接，用于清理旧的账号缓存
	rdb, err := serverinits.Redis(cfg.RedisConnectionString)
	if err != nil {
		l.Warn("redis unavailable, cached administrator record may stay stale until it expires", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	handlerApp := handlers.NewApp(cfg, l, store.New(l, db, rdb, cfg.DBTimeout), password.New(nil))

	user, err := handlerApp.Provision(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Admin user %s (%s) has been created or updated.\n", user.ID, user.Email)
	return nil
}
