package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"`

	// 基础信息
	Email string `gorm:"column:email;uniqueIndex;not null"` // 规范化后的邮箱，全局唯一
	Name  string `gorm:"column:name"`                       // 显示名称
	Role  string `gorm:"column:role;not null"`              // 权限：只有 admin 可以访问管理接口

	// 登录认证相关
	PasswordHash string `gorm:"column:password_hash;not null"` // 密码，使用 argon2id（旧数据为 bcrypt）储存

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
