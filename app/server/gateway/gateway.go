// Package gateway guards the administrative operations over the waitlist.
//
// Every request carries its own credential and is re-checked; nothing is
// remembered between requests. A credential is either identifier:secret for
// a provisioned administrator account or the legacy shared secret.
package gateway

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Welluable/front-row/app/server/constants"
	"github.com/Welluable/front-row/app/server/errs"
	"github.com/Welluable/front-row/app/server/models"
	"go.uber.org/zap"
)

// 账号不存在时用于比对的固定密码，只为了让耗时一致
const dummyPassword = "front-row-dummy-password"

type Store interface {
	FindAdministrator(ctx context.Context, email string) (*models.User, error)
	ListSignups(ctx context.Context) ([]models.Signup, error)
	DeleteSignup(ctx context.Context, id string) error
	UpdateAdministratorHash(ctx context.Context, user *models.User, hash string) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	NeedsRehash(hash string) bool
}

type Options struct {
	// LegacySecret 旧版共享密码，为空时共享密码方式一律拒绝
	LegacySecret string
}

// SignupView 管理列表中暴露的字段
type SignupView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Gateway struct {
	l         *zap.Logger
	store     Store
	hasher    Hasher
	legacy    []byte
	dummyHash string
}

func New(l *zap.Logger, store Store, hasher Hasher, opts Options) (*Gateway, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Gateway{
		l:         l,
		store:     store,
		hasher:    hasher,
		legacy:    []byte(opts.LegacySecret),
		dummyHash: dummyHash,
	}, nil
}

// Authorize 校验一个 bearer token，返回的 error 只代表存储故障
func (g *Gateway) Authorize(ctx context.Context, raw string) (bool, error) {
	switch tok := ParseToken(raw).(type) {
	case PerAccountToken:
		return g.authorizeAccount(ctx, tok)
	case SharedSecretToken:
		return g.authorizeShared(tok), nil
	default:
		return false, nil
	}
}

func (g *Gateway) authorizeAccount(ctx context.Context, tok PerAccountToken) (bool, error) {
	if tok.Identifier == "" || tok.Secret == "" {
		return false, nil
	}

	user, err := g.store.FindAdministrator(ctx, tok.Identifier)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		g.l.Error("failed to find administrator", zap.Error(err))
		if errors.Is(err, errs.ErrStorage) {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	if user == nil || user.Role != constants.RoleAdmin {
		// 账号不存在或没有权限，照样算一次 hash
		_, _ = g.hasher.Verify(tok.Secret, g.dummyHash)
		return false, nil
	}

	ok, err := g.hasher.Verify(tok.Secret, user.PasswordHash)
	if err != nil {
		// hash 损坏视为校验失败，不算存储故障
		g.l.Warn("failed to verify administrator password", zap.String("id", user.ID), zap.Error(err))
		return false, nil
	}
	if ok && g.hasher.NeedsRehash(user.PasswordHash) {
		g.upgradeHash(ctx, user, tok.Secret)
	}
	return ok, nil
}

// upgradeHash 旧格式（bcrypt）校验成功后换成 argon2id ，
// 之后该账号与不存在的账号走同样耗时的校验。失败只记录日志
func (g *Gateway) upgradeHash(ctx context.Context, user *models.User, secret string) {
	hash, err := g.hasher.Hash(secret)
	if err != nil {
		g.l.Warn("failed to rehash administrator password", zap.String("id", user.ID), zap.Error(err))
		return
	}
	if err = g.store.UpdateAdministratorHash(ctx, user, hash); err != nil {
		g.l.Warn("failed to store upgraded administrator hash", zap.String("id", user.ID), zap.Error(err))
		return
	}
	g.l.Info("administrator hash upgraded to argon2id", zap.String("id", user.ID))
}

func (g *Gateway) authorizeShared(tok SharedSecretToken) bool {
	if len(g.legacy) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tok.Secret), g.legacy) == 1
}

// List 按创建时间倒序列出所有报名
func (g *Gateway) List(ctx context.Context) ([]SignupView, error) {
	signups, err := g.store.ListSignups(ctx)
	if err != nil {
		g.l.Error("failed to list signups", zap.Error(err))
		if errors.Is(err, errs.ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	views := make([]SignupView, 0, len(signups))
	for _, s := range signups {
		views = append(views, SignupView{
			ID:        s.ID,
			Email:     s.Email,
			CreatedAt: s.CreatedAt,
		})
	}
	return views, nil
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.ErrInvalidInput
	}

	if err := g.store.DeleteSignup(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		g.l.Error("failed to delete signup", zap.String("id", id), zap.Error(err))
		if errors.Is(err, errs.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}

	g.l.Info("signup deleted", zap.String("id", id))
	return nil
}
