package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrAdminConfigMissing 表示缺少 ADMIN_EMAIL 或 ADMIN_PASSWORD。
var ErrAdminConfigMissing = errors.New("admin credentials not configured: set ADMIN_EMAIL and ADMIN_PASSWORD")

// ErrSessionSecretMissing 表示缺少 SESSION_SECRET 或长度不足。
var ErrSessionSecretMissing = fmt.Errorf("session secret not configured: set SESSION_SECRET to at least %d characters", minSessionSecretLen)

const minSessionSecretLen = 16

// AdminConfig 描述引导管理员账号的环境配置。
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	StoreBackend   string
	RESTURL        string
	RESTServiceKey string
	RESTSchema     string
	TraceExporter  string
	SessionSecret  string
	SecureCookies  bool
	Admin          AdminConfig
	ResetToken     string
	CacheBackend   string
	CacheTTL       time.Duration
	RedisAddr      string
	RedisPassword  string
	CORSOrigins    []string
	UploadDir      string
	UploadURLPath  string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若当前目录存在 .env 文件，会先加载它，已存在的环境变量不会被覆盖。
func Load() AppConfig {
	_ = godotenv.Load()

	port := env("PORT", "8080")

	return AppConfig{
		ListenAddr:     env("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:           port,
		GinMode:        env("GIN_MODE", "release"),
		DatabaseDriver: strings.ToLower(env("DATABASE_DRIVER", "sqlite")),
		DatabasePath:   env("DATABASE_PATH", "portfolio.db"),
		DatabaseURL:    env("DATABASE_URL", ""),
		StoreBackend:   strings.ToLower(env("STORE_BACKEND", "sql")),
		RESTURL:        strings.TrimRight(env("SUPABASE_URL", ""), "/"),
		RESTServiceKey: env("SUPABASE_SERVICE_ROLE_KEY", ""),
		RESTSchema:     env("SUPABASE_SCHEMA", "public"),
		TraceExporter:  strings.ToLower(env("OTEL_TRACES_EXPORTER", "none")),
		SessionSecret:  env("SESSION_SECRET", ""),
		SecureCookies:  envBool("SECURE_COOKIES", false),
		Admin: AdminConfig{
			Email:    env("ADMIN_EMAIL", ""),
			Password: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
			Name:     env("ADMIN_NAME", "Admin"),
		},
		ResetToken:    env("ADMIN_RESET_TOKEN", ""),
		CacheBackend:  strings.ToLower(env("CACHE_BACKEND", "none")),
		CacheTTL:      envDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:   envList("CORS_ORIGINS"),
		UploadDir:     env("UPLOAD_DIR", "uploads"),
		UploadURLPath: env("UPLOAD_URL_PATH", "/uploads"),
	}
}

// SessionKey 返回签名会话 Cookie 与访问令牌的密钥。
// 密钥只能来自环境变量，缺失或过短时返回 ErrSessionSecretMissing。
func (c AppConfig) SessionKey() (string, error) {
	if len(c.SessionSecret) < minSessionSecretLen {
		return "", ErrSessionSecretMissing
	}
	return c.SessionSecret, nil
}

// AdminCredentials 返回管理员凭据，邮箱或密码缺失时返回 ErrAdminConfigMissing。
func (c AppConfig) AdminCredentials() (AdminConfig, error) {
	if c.Admin.Email == "" || c.Admin.Password == "" {
		return AdminConfig{}, ErrAdminConfigMissing
	}
	admin := c.Admin
	if admin.Name == "" {
		admin.Name = "Admin"
	}
	return admin, nil
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
