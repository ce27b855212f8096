package handlers

import (
	"context"
	"fmt"

	"github.com/Welluable/front-row/app/provision/config"
	"github.com/Welluable/front-row/app/server/constants"
	"github.com/Welluable/front-row/app/server/models"
	"go.uber.org/zap"
)

type Store interface {
	UpsertAdministrator(ctx context.Context, user *models.User) error
}

type Hasher interface {
	Hash(password string) (string, error)
}

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	store  Store
	hasher Hasher
}

func NewApp(cfg *config.Config, l *zap.Logger, store Store, hasher Hasher) *App {
	return &App{
		cfg:    cfg,
		l:      l,
		store:  store,
		hasher: hasher,
	}
}

// Provision 按邮箱创建或更新管理员，重复执行会覆盖密码与名称
func (a *App) Provision(ctx context.Context) (*models.User, error) {
	hash, err := a.hasher.Hash(a.cfg.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        a.cfg.Email,
		Name:         a.cfg.Name,
		Role:         constants.RoleAdmin,
		PasswordHash: hash,
	}
	if err = a.store.UpsertAdministrator(ctx, user); err != nil {
		a.l.Error("failed to upsert administrator", zap.String("email", a.cfg.Email), zap.Error(err))
		return nil, err
	}

	a.l.Debug("administrator provisioned", zap.String("id", user.ID))
	return user, nil
}
