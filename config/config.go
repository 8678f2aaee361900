package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Blob     BlobConfig
	Firebase FirebaseConfig
	Sandbox  SandboxConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BlobConfig describes the object-storage bucket holding published
// artifacts. Endpoint is optional and enables S3-compatible stores
// (MinIO, localstack) with path-style addressing.
type BlobConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type FirebaseConfig struct {
	CredentialsPath string
}

type SandboxConfig struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	CaptureTimeout time.Duration
	SessionTTL     time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sandpen"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Blob: BlobConfig{
			Bucket:        getEnv("BLOB_BUCKET", "sandpen-projects"),
			Region:        getEnv("BLOB_REGION", "us-east-1"),
			Endpoint:      getEnv("BLOB_ENDPOINT", ""),
			AccessKey:     getEnv("BLOB_ACCESS_KEY", ""),
			SecretKey:     getEnv("BLOB_SECRET_KEY", ""),
			PublicBaseURL: getEnv("BLOB_PUBLIC_BASE_URL", ""),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Sandbox: SandboxConfig{
			Headless:       getEnvAsBool("SANDBOX_HEADLESS", true),
			ViewportWidth:  getEnvAsInt("SANDBOX_VIEWPORT_WIDTH", 1280),
			ViewportHeight: getEnvAsInt("SANDBOX_VIEWPORT_HEIGHT", 720),
			CaptureTimeout: time.Duration(getEnvAsInt("SANDBOX_CAPTURE_TIMEOUT_MS", 15000)) * time.Millisecond,
			SessionTTL:     time.Duration(getEnvAsInt("SANDBOX_SESSION_TTL_MS", 300000)) * time.Millisecond,
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Blob.Bucket == "" {
		return fmt.Errorf("BLOB_BUCKET is required")
	}

	return nil
}

// PublicBase returns the base URL public clients use to fetch blob
// artifacts. Falls back to the virtual-hosted S3 URL when no CDN or
// custom base is configured.
func (c *BlobConfig) PublicBase() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	if c.Endpoint != "" {
		return fmt.Sprintf("%s/%s", c.Endpoint, c.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
