package inits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Welluable/front-row/app/server/config"
	"github.com/Welluable/front-row/app/server/constants"
	"github.com/spf13/viper"
)

func Config() (*config.Config, error) {
	v := viper.New()

	// .env 可选，环境变量优先
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("MODE", "")
	v.SetDefault("LISTEN", ":1323") // 默认监听地址
	v.SetDefault("DB_CONN", "")
	v.SetDefault("DB_TIMEOUT", constants.DefaultDBTimeout)
	v.SetDefault("REDIS_CONN", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("INTAKE_MIN_SUBMIT", constants.IntakeMinSubmit)
	v.SetDefault("INTAKE_RATE_LIMIT", constants.IntakeRateLimit)
	v.SetDefault("INTAKE_RATE_WINDOW", constants.IntakeRateWindow)
	v.SetDefault("STATS_PREFIX", constants.DefaultStatsPrefix)
	v.SetDefault("STATS_TTL", constants.DefaultStatsTTL)
	v.SetDefault("ADMIN_RATE_RPS", constants.DefaultAdminRPS)
	v.SetDefault("ADMIN_RATE_BURST", constants.DefaultAdminBurst)

	var cfg config.Config

	cfg.System.IsProd = strings.HasPrefix(strings.ToLower(v.GetString("MODE")), "p")
	cfg.System.Listen = v.GetString("LISTEN")
	cfg.System.DBConnectionString = v.GetString("DB_CONN")
	cfg.System.DBTimeout = v.GetDuration("DB_TIMEOUT")
	cfg.System.RedisConnectionString = v.GetString("REDIS_CONN")

	cfg.Security.LegacyAdminPassword = v.GetString("ADMIN_PASSWORD")

	cfg.Intake.MinSubmit = v.GetDuration("INTAKE_MIN_SUBMIT")
	cfg.Intake.RateLimit = v.GetInt("INTAKE_RATE_LIMIT")
	cfg.Intake.RateWindow = v.GetDuration("INTAKE_RATE_WINDOW")
	cfg.Intake.StatsPrefix = v.GetString("STATS_PREFIX")
	cfg.Intake.StatsTTL = v.GetDuration("STATS_TTL")

	cfg.Admin.RateRPS = v.GetFloat64("ADMIN_RATE_RPS")
	cfg.Admin.RateBurst = v.GetInt("ADMIN_RATE_BURST")

	if cfg.System.DBConnectionString == "" {
		return nil, errors.New("DB_CONN environment variable not set")
	}
	if cfg.System.DBTimeout <= 0 {
		return nil, fmt.Errorf("DB_TIMEOUT must be > 0, got %s", cfg.System.DBTimeout)
	}
	if cfg.Intake.RateLimit <= 0 {
		return nil, fmt.Errorf("INTAKE_RATE_LIMIT must be > 0, got %d", cfg.Intake.RateLimit)
	}
	if cfg.Intake.RateWindow <= 0 {
		return nil, fmt.Errorf("INTAKE_RATE_WINDOW must be > 0, got %s", cfg.Intake.RateWindow)
	}
	if cfg.Intake.MinSubmit < 0 {
		return nil, fmt.Errorf("INTAKE_MIN_SUBMIT must be >= 0, got %s", cfg.Intake.MinSubmit)
	}
	if cfg.Admin.RateRPS < 0 {
		return nil, fmt.Errorf("ADMIN_RATE_RPS must be >= 0, got %v", cfg.Admin.RateRPS)
	}
	if cfg.Admin.RateRPS > 0 && cfg.Admin.RateBurst <= 0 {
		return nil, fmt.Errorf("ADMIN_RATE_BURST must be > 0 when ADMIN_RATE_RPS is set, got %d", cfg.Admin.RateBurst)
	}

	return &cfg, nil
}
