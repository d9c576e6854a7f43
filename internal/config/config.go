package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevJWTSecret 是仅供本地调试使用的令牌签名密钥
const DevJWTSecret = "bloghub-dev-jwt-secret"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseDriver     string
	DatabasePath       string
	SessionSecret      string
	JWTSecret          string
	TokenTTL           time.Duration
	GinMode            string
	LogLevel           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	PublicPageSize     int
	AdminEmail         string
	SuperRootUserName  string
	SuperRootPassword  string
}

// Development 报告是否运行在调试模式
func (c AppConfig) Development() bool {
	return c.GinMode == "debug"
}

// ValidateServe 检查对外提供服务前必须设置的项。
// release 模式下不允许使用内置的令牌签名密钥。
func (c AppConfig) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if !c.Development() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set when GIN_MODE is not debug")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", "bloghub.db")
	v.SetDefault("session_secret", "bloghub-dev-secret")
	v.SetDefault("jwt_secret", DevJWTSecret)
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("rate_limit_per_minute", 20)
	v.SetDefault("public_page_size", 5)
	v.SetDefault("admin_email", "")
	v.SetDefault("super_root_user_name", "")
	v.SetDefault("super_root_password", "")
}

// Load 从环境变量（以及可选的 CONFIG_FILE 指定的文件）读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (AppConfig, error) {
	port := strings.TrimSpace(v.GetString("port"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(v.GetString("listen_addr"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ginMode := strings.TrimSpace(v.GetString("gin_mode"))
	if ginMode == "" {
		ginMode = "release"
	}

	tokenTTL := v.GetDuration("token_ttl")
	if tokenTTL <= 0 {
		return AppConfig{}, errors.New("token_ttl must be positive")
	}

	pageSize := v.GetInt("public_page_size")
	if pageSize <= 0 {
		pageSize = 5
	}

	cfg := AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseDriver:     strings.ToLower(strings.TrimSpace(v.GetString("database_driver"))),
		DatabasePath:       strings.TrimSpace(v.GetString("database_path")),
		SessionSecret:      strings.TrimSpace(v.GetString("session_secret")),
		JWTSecret:          strings.TrimSpace(v.GetString("jwt_secret")),
		TokenTTL:           tokenTTL,
		GinMode:            ginMode,
		LogLevel:           strings.TrimSpace(v.GetString("log_level")),
		RedisAddr:          strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		CacheTTL:           v.GetDuration("cache_ttl"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		PublicPageSize:     pageSize,
		AdminEmail:         strings.ToLower(strings.TrimSpace(v.GetString("admin_email"))),
		SuperRootUserName:  strings.TrimSpace(v.GetString("super_root_user_name")),
		SuperRootPassword:  strings.TrimSpace(v.GetString("super_root_password")),
	}

	return cfg, nil
}
