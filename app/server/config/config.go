package config

import "time"

type Config struct {
	System struct {
		IsProd                bool          // 是否为生产环境
		Listen                string        // 监听地址
		DBConnectionString    string        // Postgres 数据库的连接字符串
		DBTimeout             time.Duration // 单次数据库操作的超时时间
		RedisConnectionString string        // Redis 数据库的连接字符串，留空则不启用缓存与 Redis 统计
	}
	Security struct {
		LegacyAdminPassword string // 旧版共享管理密码（不含冒号的 token 与之比对），留空则禁用该方式
	}
	Intake struct {
		MinSubmit   time.Duration // 表单从加载到提交的最短时间，更快的视为机器人
		RateLimit   int           // 每个窗口内每个客户端允许的提交次数
		RateWindow  time.Duration // 固定窗口长度
		StatsPrefix string        // Redis 统计键前缀
		StatsTTL    time.Duration // 按分钟统计的键的过期时间
	}
	Admin struct {
		RateRPS   float64 // 管理接口每个客户端每秒允许的请求数，0 表示不限制
		RateBurst int     // 管理接口令牌桶容量
	}
}
