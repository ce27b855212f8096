package inits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Welluable/front-row/app/provision/config"
	"github.com/Welluable/front-row/app/server/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultName = "Admin"

// ErrHelp 用户只想看帮助
var ErrHelp = pflag.ErrHelp

// Config 命令行参数优先，其次环境变量
func Config(args []string) (*config.Config, error) {
	fs := pflag.NewFlagSet("provision", pflag.ContinueOnError)
	fs.StringP("email", "e", "", "administrator email (env ADMIN_EMAIL)")
	fs.StringP("password", "p", "", "administrator password (env ADMIN_PASSWORD)")
	fs.StringP("name", "n", defaultName, "display name (env ADMIN_NAME)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MODE", "")
	v.SetDefault("DB_CONN", "")
	v.SetDefault("DB_TIMEOUT", constants.DefaultDBTimeout)
	v.SetDefault("REDIS_CONN", "")

	for key, flag := range map[string]string{
		"ADMIN_EMAIL":    "email",
		"ADMIN_PASSWORD": "password",
		"ADMIN_NAME":     "name",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	var cfg config.Config

	cfg.IsProd = strings.HasPrefix(strings.ToLower(v.GetString("MODE")), "p")
	cfg.DBConnectionString = v.GetString("DB_CONN")
	cfg.DBTimeout = v.GetDuration("DB_TIMEOUT")
	cfg.RedisConnectionString = v.GetString("REDIS_CONN")

	cfg.Email = strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL")))
	cfg.Password = v.GetString("ADMIN_PASSWORD")
	cfg.Name = strings.TrimSpace(v.GetString("ADMIN_NAME"))
	if cfg.Name == "" {
		cfg.Name = defaultName
	}

	if cfg.Email == "" || cfg.Password == "" {
		return nil, errors.New("email and password are required (--email/--password or ADMIN_EMAIL/ADMIN_PASSWORD)")
	}
	if strings.Contains(cfg.Email, ":") {
		return nil, errors.New("email must not contain ':'")
	}
	if cfg.DBConnectionString == "" {
		return nil, errors.New("DB_CONN environment variable not set")
	}

	return &cfg, nil
}
