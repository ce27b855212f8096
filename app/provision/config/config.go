package config

import "time"

type Config struct {
	// 基础配置
	IsProd bool

	// 存储配置
	DBConnectionString    string
	DBTimeout             time.Duration
	RedisConnectionString string // 留空则不清理缓存

	// 要开通的管理员账号
	Email    string
	Password string
	Name     string
}
