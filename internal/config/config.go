package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Search   SearchConfig
	Repair   RepairConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	SearchCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	ConsumerName      string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

type SearchConfig struct {
	DefaultRadiusKm  float64
	MaxRadiusKm      float64
	DefaultPageSize  int
	MaxPageSize      int
	ScanBatchSize    int
	GeohashPrecision uint
}

type RepairConfig struct {
	RegionsFile string
	Seed        uint64
	PreviewCap  int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env необязателен, переменные окружения имеют приоритет
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CORSOrigins: viper.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SearchCacheTTL: time.Duration(viper.GetInt("SEARCH_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			ConsumerName:      viper.GetString("WORKER_CONSUMER_NAME"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Search: SearchConfig{
			DefaultRadiusKm:  viper.GetFloat64("SEARCH_DEFAULT_RADIUS_KM"),
			MaxRadiusKm:      viper.GetFloat64("SEARCH_MAX_RADIUS_KM"),
			DefaultPageSize:  viper.GetInt("SEARCH_DEFAULT_PAGE_SIZE"),
			MaxPageSize:      viper.GetInt("SEARCH_MAX_PAGE_SIZE"),
			ScanBatchSize:    viper.GetInt("SEARCH_SCAN_BATCH_SIZE"),
			GeohashPrecision: viper.GetUint("SEARCH_GEOHASH_PRECISION"),
		},
		Repair: RepairConfig{
			RegionsFile: viper.GetString("REPAIR_REGIONS_FILE"),
			Seed:        viper.GetUint64("REPAIR_SEED"),
			PreviewCap:  viper.GetInt("REPAIR_PREVIEW_CAP"),
		},
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 8080)
	viper.SetDefault("API_ENV", "development")
	viper.SetDefault("API_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("SEARCH_CACHE_TTL", 300)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WORKER_ENABLED", true)
	viper.SetDefault("WORKER_CONSUMER_GROUP", "geo-coordinate-sync-workers")
	viper.SetDefault("WORKER_CONSUMER_NAME", "geo-sync-1")
	viper.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)
	viper.SetDefault("SEARCH_DEFAULT_RADIUS_KM", 10)
	viper.SetDefault("SEARCH_MAX_RADIUS_KM", 500)
	viper.SetDefault("SEARCH_DEFAULT_PAGE_SIZE", 20)
	viper.SetDefault("SEARCH_MAX_PAGE_SIZE", 100)
	viper.SetDefault("SEARCH_SCAN_BATCH_SIZE", 1000)
	viper.SetDefault("SEARCH_GEOHASH_PRECISION", 7)
	viper.SetDefault("REPAIR_PREVIEW_CAP", 10)
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
