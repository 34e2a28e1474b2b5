// internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Forecast ForecastConfig
	Risk     RiskConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	MaxConcurrentTx        int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type ForecastConfig struct {
	Model               string
	Trees               int
	Seed                int64
	Workers             int
	ColdStartDemand     int
	MinHistory          int
	MinTrainingRows     int
	ColdStartConfidence float64
	AverageConfidence   float64
	ModelConfidence     float64
}

type RiskConfig struct {
	CriticalRatio  float64
	WarningRatio   float64
	SafetyBuffer   float64
	SeasonalAlerts []string
	TopRiskyLimit  int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)
	})

	return instance
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "stockcast")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("DB_MAX_CONCURRENT_TX", 4)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 60)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "stockcast")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "predictions")

	v.SetDefault("FORECAST_MODEL", "forest")
	v.SetDefault("FORECAST_TREES", 50)
	v.SetDefault("FORECAST_SEED", 42)
	v.SetDefault("FORECAST_WORKERS", 4)
	v.SetDefault("FORECAST_COLD_START_DEMAND", 5)
	v.SetDefault("FORECAST_MIN_HISTORY", 3)
	v.SetDefault("FORECAST_MIN_TRAINING_ROWS", 6)
	v.SetDefault("FORECAST_COLD_START_CONFIDENCE", 0.1)
	v.SetDefault("FORECAST_AVERAGE_CONFIDENCE", 0.4)
	v.SetDefault("FORECAST_MODEL_CONFIDENCE", 0.8)

	v.SetDefault("RISK_CRITICAL_RATIO", 0.5)
	v.SetDefault("RISK_WARNING_RATIO", 1.2)
	v.SetDefault("RISK_SAFETY_BUFFER", 0.2)
	v.SetDefault("RISK_SEASONAL_ALERTS", []string{"Festival", "Summer"})
	v.SetDefault("RISK_TOP_RISKY_LIMIT", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds a Config from the values registered in v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),

			MaxOpenConns:           v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:           v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeMinutes: v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES"),
			MaxConcurrentTx:        v.GetInt("DB_MAX_CONCURRENT_TX"),
		},
		Cache: CacheConfig{
			Enabled:           v.GetBool("CACHE_ENABLED"),
			RedisURL:          v.GetString("REDIS_URL"),
			RedisHost:         v.GetString("REDIS_HOST"),
			RedisPort:         v.GetString("REDIS_PORT"),
			RedisPassword:     v.GetString("REDIS_PASSWORD"),
			RedisDB:           v.GetInt("REDIS_DB"),
			SummaryTTLSeconds: v.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    strings.Trim(v.GetString("STORAGE_PREFIX"), "/"),
		},
		Forecast: ForecastConfig{
			Model:               v.GetString("FORECAST_MODEL"),
			Trees:               v.GetInt("FORECAST_TREES"),
			Seed:                v.GetInt64("FORECAST_SEED"),
			Workers:             v.GetInt("FORECAST_WORKERS"),
			ColdStartDemand:     v.GetInt("FORECAST_COLD_START_DEMAND"),
			MinHistory:          v.GetInt("FORECAST_MIN_HISTORY"),
			MinTrainingRows:     v.GetInt("FORECAST_MIN_TRAINING_ROWS"),
			ColdStartConfidence: v.GetFloat64("FORECAST_COLD_START_CONFIDENCE"),
			AverageConfidence:   v.GetFloat64("FORECAST_AVERAGE_CONFIDENCE"),
			ModelConfidence:     v.GetFloat64("FORECAST_MODEL_CONFIDENCE"),
		},
		Risk: RiskConfig{
			CriticalRatio:  v.GetFloat64("RISK_CRITICAL_RATIO"),
			WarningRatio:   v.GetFloat64("RISK_WARNING_RATIO"),
			SafetyBuffer:   v.GetFloat64("RISK_SAFETY_BUFFER"),
			SeasonalAlerts: v.GetStringSlice("RISK_SEASONAL_ALERTS"),
			TopRiskyLimit:  v.GetInt("RISK_TOP_RISKY_LIMIT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
