package constants

import "time"

const (
	IntakeMinSubmit  = 2000 * time.Millisecond // 表单最短填写时间
	IntakeRateLimit  = 3                       // 每个窗口最多提交次数
	IntakeRateWindow = 1 * time.Hour           // 固定窗口长度
	MaxEmailLength   = 254                     // 联系地址最大长度
)

const (
	// UnknownClient 无法识别客户端地址时用于计算指纹的占位值
	UnknownClient = "unknown"

	// RoleAdmin 唯一被承认的管理权限
	RoleAdmin = "admin"
)

const (
	DefaultDBTimeout   = 5 * time.Second
	DefaultStatsPrefix = "waitlist:stats"
	DefaultStatsTTL    = 24 * time.Hour
	DefaultAdminRPS    = 1.0
	DefaultAdminBurst  = 10
)
