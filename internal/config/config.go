package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings. ArchiveBucket receives the
// PDF/document archive copies, FileBucket the general file copies.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	ArchiveBucket string
	FileBucket    string
	UseSSL        bool
}

// RedisConfig holds the connection settings for the asynq task queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Concurrency bounds the worker's processing pool.
	Concurrency int
}

// SDKConfig holds the endpoint of the external case/folder hierarchy service.
type SDKConfig struct {
	BaseURL string
	Token   string
}

// ConverterConfig holds the endpoint of the document-conversion service.
type ConverterConfig struct {
	BaseURL string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	SDK       SDKConfig
	Converter ConverterConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			ArchiveBucket: getEnv("MINIO_ARCHIVE_BUCKET", "pdf-archive"),
			FileBucket:    getEnv("MINIO_FILE_BUCKET", "files"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 5),
		},
		SDK: SDKConfig{
			BaseURL: getEnv("SDK_BASE_URL", ""),
			Token:   getEnv("SDK_TOKEN", ""),
		},
		Converter: ConverterConfig{
			BaseURL: getEnv("CONVERTER_BASE_URL", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
