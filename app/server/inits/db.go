package inits

import (
	"fmt"

	"github.com/Welluable/front-row/app/server/constants"
	"github.com/Welluable/front-row/app/server/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DB(conn string, debugMode bool) (db *gorm.DB, err error) {
	logLevel := logger.Warn
	if debugMode {
		logLevel = logger.Info
	}

	// 打开连接，唯一约束冲突翻译为 gorm.ErrDuplicatedKey
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = mig(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 返回
	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Signup{},
		&models.User{},
	)
}

// CountAdministrators 启动时提示是否还没有开通任何管理员
func CountAdministrators(db *gorm.DB, l *zap.Logger) {
	var counter int64
	if err := db.Model(&models.User{}).Where("role = ?", constants.RoleAdmin).Count(&counter).Error; err != nil {
		l.Warn("failed to count administrators", zap.Error(err))
	} else if counter == 0 {
		l.Warn("no administrator provisioned, admin endpoints only accept the legacy shared password")
	}
}
