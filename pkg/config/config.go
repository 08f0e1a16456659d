package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
// 관측 종료일, 예측 기간, 할인율은 설정이 아니라 contracts 상수
type Config struct {
	// Server
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development staging production"`

	// Transaction log source
	Data DataConfig

	// Database (SQL sources only)
	Database DatabaseConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string `validate:"oneof=json console pretty"`
}

// DataConfig describes where the transaction log comes from
type DataConfig struct {
	Source   string `validate:"oneof=csv postgres mysql"`
	Path     string `validate:"required_if=Source csv"`
	Encoding string `validate:"oneof=windows-1252 cp1252 latin1 iso-8859-1 utf-8 utf8"` // lower-cased on load
	Table    string `validate:"required"`
}

// DatabaseConfig holds SQL connection configuration
type DatabaseConfig struct {
	URL      string // PostgreSQL (pgx)
	MySQLDSN string // MySQL / MariaDB

	// Connection Pool
	MaxConns        int `validate:"gte=1"`
	MinConns        int `validate:"gte=0"`
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// APIConfig holds HTTP surface limits
type APIConfig struct {
	RateLimit float64 `validate:"gt=0"` // report requests per second
	RateBurst int     `validate:"gte=1"`
}

var validate = validator.New()

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			Source:   getEnv("CLV_SOURCE", SourceCSV),
			Path:     getEnv("CLV_DATA_PATH", "OnlineRetail.csv"),
			Encoding: strings.ToLower(getEnv("CLV_DATA_ENCODING", "windows-1252")),
			Table:    getEnv("CLV_SOURCE_TABLE", "online_retail"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MySQLDSN:        getEnv("MYSQL_DSN", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 0),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		API: APIConfig{
			RateLimit: getEnvAsFloat("API_RATE_LIMIT", 2),
			RateBurst: getEnvAsInt("API_RATE_BURST", 4),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks struct constraints and the source/connection pairing
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Data.Source {
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when CLV_SOURCE=postgres")
		}
	case SourceMySQL:
		if c.Database.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required when CLV_SOURCE=mysql")
		}
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be <= DB_MAX_CONNS")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
