package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Signup struct {
	ID string `gorm:"column:id;primaryKey;type:varchar(36)"` // 创建时生成的 UUID

	// 提交信息
	Email  string  `gorm:"column:email;uniqueIndex;not null"` // 规范化后的联系地址，全局唯一
	Source *string `gorm:"column:source"`                     // 来源标记，客户端提供，不做校验

	// 限流相关
	IPHash string `gorm:"column:ip_hash;not null" json:"-"` // 客户端地址的 SHA-256 指纹，不保存原始地址

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"` // 创建时间，不会更新
}

func (s *Signup) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
