// Package config 读取运行配置：.env → 环境变量 → config.yaml → 默认值
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 运行配置
type Config struct {
	AppEnv   string
	LogLevel string

	ServerPort string
	SiteURL    string

	DatabaseDSN string

	// 认证
	AuthProvider    string // supabase | local
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string
	CookieSecure    bool

	Storage StorageConfig

	// 孤儿对账
	OrphanTTL       time.Duration
	OrphanSweepCron string
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Provider   string // s3 | local
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PublicBase string
	BasePath   string
}

// requiredKeys 缺失即无法启动
var requiredKeys = []string{"SUPABASE_URL", "SUPABASE_ANON_KEY"}

// ErrMissingConfig 必填配置缺失
var ErrMissingConfig = errors.New("missing required configuration")

// Load 加载配置
// .env 文件可选；config.yaml 可选，环境变量优先于文件
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper 从 viper 实例解析配置
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	cfg := &Config{
		AppEnv:          v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		ServerPort:      v.GetString("SERVER_PORT"),
		SiteURL:         strings.TrimRight(v.GetString("SITE_URL"), "/"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		AuthProvider:    strings.ToLower(v.GetString("AUTH_PROVIDER")),
		SupabaseURL:     strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAnonKey: v.GetString("SUPABASE_ANON_KEY"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		OrphanTTL:       v.GetDuration("ORPHAN_TTL"),
		OrphanSweepCron: v.GetString("ORPHAN_SWEEP_CRON"),
		Storage: StorageConfig{
			Provider:   strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			Bucket:     v.GetString("STORAGE_BUCKET"),
			Region:     v.GetString("STORAGE_REGION"),
			Endpoint:   v.GetString("STORAGE_ENDPOINT"),
			AccessKey:  v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:  v.GetString("STORAGE_SECRET_KEY"),
			PublicBase: v.GetString("STORAGE_PUBLIC_BASE"),
			BasePath:   v.GetString("STORAGE_BASE_PATH"),
		},
	}

	if cfg.Storage.PublicBase == "" {
		switch cfg.Storage.Provider {
		case "s3":
			cfg.Storage.PublicBase = fmt.Sprintf("%s/storage/v1/object/public/%s", cfg.SupabaseURL, cfg.Storage.Bucket)
		case "local":
			cfg.Storage.PublicBase = cfg.SiteURL + "/uploads"
		}
	}

	switch cfg.AuthProvider {
	case "supabase", "local":
	default:
		return nil, fmt.Errorf("不支持的认证提供方: %s", cfg.AuthProvider)
	}
	if cfg.AuthProvider == "local" && cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("%w: DATABASE_DSN", ErrMissingConfig)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("AUTH_PROVIDER", "supabase")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("STORAGE_PROVIDER", "s3")
	v.SetDefault("STORAGE_BUCKET", "product-images")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("ORPHAN_TTL", "24h")
	v.SetDefault("ORPHAN_SWEEP_CRON", "0 0/30 * * * *")
}

// IsDevelopment 是否开发环境
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}
