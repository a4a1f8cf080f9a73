package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Geo       GeoConfig
	Analytics AnalyticsConfig
	Links     LinksConfig
}

type AppConfig struct {
	Port     string
	Env      string
	BaseURL  string // Базовый URL для коротких ссылок, без завершающего слэша
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
	CacheTTL time.Duration
}

type AuthConfig struct {
	APIKeys   map[string]string // API key -> name/description
	JWTSecret string
	JWTTTL    time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

type GeoConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// AnalyticsConfig параметры worker pool для записи кликов
type AnalyticsConfig struct {
	Workers      int
	BufferSize   int
	EnqueueWait  time.Duration
	DrainTimeout time.Duration
	WindowDays   int
}

type LinksConfig struct {
	CreateAttempts int
}

// Load читает конфигурацию из .env файла (если он есть) и переменных окружения.
// Переменные окружения имеют приоритет над файлом.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.Env = v.GetString("APP_ENV")
	cfg.App.BaseURL = strings.TrimRight(v.GetString("APP_BASE_URL"), "/")
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.CacheTTL = v.GetDuration("CACHE_TTL")

	// Формат API_KEYS: key1:name1,key2:name2
	cfg.Auth.APIKeys = parseAPIKeys(v.GetString("API_KEYS"))
	cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	cfg.Auth.JWTTTL = v.GetDuration("JWT_TTL")

	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST")

	cfg.Geo.Endpoint = strings.TrimRight(v.GetString("GEO_ENDPOINT"), "/")
	cfg.Geo.Timeout = v.GetDuration("GEO_TIMEOUT")

	cfg.Analytics.Workers = v.GetInt("ANALYTICS_WORKERS")
	cfg.Analytics.BufferSize = v.GetInt("ANALYTICS_BUFFER")
	cfg.Analytics.EnqueueWait = v.GetDuration("ANALYTICS_ENQUEUE_WAIT")
	cfg.Analytics.DrainTimeout = v.GetDuration("ANALYTICS_DRAIN_TIMEOUT")
	cfg.Analytics.WindowDays = v.GetInt("STATS_WINDOW_DAYS")

	cfg.Links.CreateAttempts = v.GetInt("SLUG_CREATE_ATTEMPTS")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "utm_tracker")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("CACHE_TTL", 24*time.Hour)

	v.SetDefault("API_KEYS", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 30*24*time.Hour)

	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("GEO_ENDPOINT", "http://ip-api.com")
	v.SetDefault("GEO_TIMEOUT", 3*time.Second)

	v.SetDefault("ANALYTICS_WORKERS", 3)
	v.SetDefault("ANALYTICS_BUFFER", 1000)
	v.SetDefault("ANALYTICS_ENQUEUE_WAIT", 50*time.Millisecond)
	v.SetDefault("ANALYTICS_DRAIN_TIMEOUT", 5*time.Second)
	v.SetDefault("STATS_WINDOW_DAYS", 7)

	v.SetDefault("SLUG_CREATE_ATTEMPTS", 5)
}

// parseAPIKeys parses comma-separated API keys in format "key1:name1,key2:name2"
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	if raw == "" {
		return keys
	}

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			keys[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}

	return keys
}
