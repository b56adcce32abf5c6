package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string
	Mode           string // gin mode: debug, release, test
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	URL        string
	SQLitePath string
}

type CacheConfig struct {
	Backend  string // lru or redis
	Size     int
	TTL      time.Duration
	RedisURL string
}

type Config struct {
	Server            ServerConfig
	Database          DatabaseConfig
	Cache             CacheConfig
	LogLevel          string
	LogFormat         string
	AdminUsername     string
	AdminPassword     string
	ReconcileInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=chanboard port=5432 sslmode=disable")
	v.SetDefault("SQLITE_PATH", "chanboard.db")

	v.SetDefault("CACHE_BACKEND", "lru")
	v.SetDefault("CACHE_SIZE", 500)
	v.SetDefault("THREAD_CACHE_TTL", "5m")
	v.SetDefault("REDIS_URL", "redis://localhost:6379")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("RECONCILE_INTERVAL", "24h")
}

// Load 读取 .env（如存在）和进程环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, reading configuration from environment")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	origins := make([]string, 0)
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Mode:           v.GetString("GIN_MODE"),
			AllowedOrigins: origins,
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			URL:        v.GetString("DATABASE_URL"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(v.GetString("CACHE_BACKEND")),
			Size:     v.GetInt("CACHE_SIZE"),
			TTL:      v.GetDuration("THREAD_CACHE_TTL"),
			RedisURL: v.GetString("REDIS_URL"),
		},
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		ReconcileInterval: v.GetDuration("RECONCILE_INTERVAL"),
	}
}
