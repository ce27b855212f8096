package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Welluable/front-row/app/server/constants"
	"github.com/Welluable/front-row/app/server/errs"
	"github.com/Welluable/front-row/app/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres 唯一约束冲突
const pgUniqueViolation = "23505"

type Store struct {
	l       *zap.Logger   // 日志
	db      *gorm.DB      // 数据库
	rdb     *redis.Client // Redis ，为 nil 时不缓存
	timeout time.Duration // 单次操作超时
}

func New(l *zap.Logger, db *gorm.DB, rdb *redis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = constants.DefaultDBTimeout
	}
	return &Store{
		l:       l,
		db:      db,
		rdb:     rdb,
		timeout: timeout,
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *Store) CreateSignup(ctx context.Context, signup *models.Signup) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(signup).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create signup: %w", errs.ErrDuplicate)
		}
		return fmt.Errorf("create signup: %w: %w", errs.ErrStorage, err)
	}

	return nil
}

// ListSignups 按创建时间倒序返回，只取 id / email / created_at
func (s *Store) ListSignups(ctx context.Context) ([]models.Signup, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var signups []models.Signup
	if err := s.db.WithContext(ctx).
		Model(&models.Signup{}).
		Select("id", "email", "created_at").
		Order("created_at DESC").
		Find(&signups).Error; err != nil {
		return nil, fmt.Errorf("list signups: %w: %w", errs.ErrStorage, err)
	}

	return signups, nil
}

func (s *Store) DeleteSignup(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Signup{})
	if res.Error != nil {
		return fmt.Errorf("delete signup: %w: %w", errs.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete signup %q: %w", id, errs.ErrNotFound)
	}

	return nil
}

// FindAdministrator 按规范化邮箱查找账号，先查缓存再查数据库
func (s *Store) FindAdministrator(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user models.User

	// 查询缓存
	cacheKey := fmt.Sprintf(constants.CacheKeyAdministrator, email)
	if s.rdb != nil {
		if cacheBytes, err := s.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
			if !errors.Is(err, redis.Nil) {
				s.l.Error("failed to query cache for administrator", zap.Error(err))
			}
		} else if err = json.Unmarshal(cacheBytes, &user); err != nil {
			s.l.Error("failed to unmarshal administrator", zap.Error(err))
			// 可能是无效的缓存，清理掉
			s.rdb.Del(ctx, cacheKey)
		} else {
			return &user, nil
		}
	}

	// 查询数据库
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find administrator: %w", errs.ErrNotFound)
		}
		return nil, fmt.Errorf("find administrator: %w: %w", errs.ErrStorage, err)
	}

	// 加入缓存，方便下一次查询
	if s.rdb != nil {
		if cacheBytes, err := json.Marshal(&user); err != nil {
			s.l.Error("failed to marshal administrator", zap.Error(err))
		} else if err = s.rdb.Set(ctx, cacheKey, cacheBytes, constants.CacheExpireAdministrator).Err(); err != nil {
			s.l.Error("failed to cache administrator", zap.Error(err))
		}
	}

	return &user, nil
}

// UpsertAdministrator 按邮箱创建或更新账号，只在离线开通账号时使用
func (s *Store) UpsertAdministrator(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "role", "password_hash", "updated_at"}),
	}).Create(user).Error; err != nil {
		return fmt.Errorf("upsert administrator: %w: %w", errs.ErrStorage, err)
	}

	// 写入成功后立即清理缓存，旧密码不能继续生效
	s.EvictAdministrator(ctx, user.Email)

	// 冲突更新时保留的是旧 ID ，user.ID 是新生成的，用新变量按邮箱重新读一次
	var stored models.User
	if err := s.db.WithContext(ctx).Where("email = ?", user.Email).Take(&stored).Error; err != nil {
		return fmt.Errorf("reload administrator: %w: %w", errs.ErrStorage, err)
	}
	*user = stored

	return nil
}

// UpdateAdministratorHash 替换账号的密码 hash ，用于旧格式 hash 的升级
func (s *Store) UpdateAdministratorHash(ctx context.Context, user *models.User, hash string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("update administrator hash: %w: %w", errs.ErrStorage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update administrator hash %q: %w", user.ID, errs.ErrNotFound)
	}

	s.EvictAdministrator(ctx, user.Email)

	return nil
}

// EvictAdministrator 清理账号缓存，密码或权限变化后调用
func (s *Store) EvictAdministrator(ctx context.Context, email string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyAdministrator, email)).Err(); err != nil {
		s.l.Error("failed to evict administrator cache", zap.Error(err))
	}
}
