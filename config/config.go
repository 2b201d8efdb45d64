package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Store    StoreConfig
	Remote   RemoteConfig
	Mirror   MirrorConfig
	Redis    RedisConfig
	S3       S3Config
	Snapshot SnapshotConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	BackendDatabase = "database"
	BackendLocal    = "local"
	BackendRemote   = "remote"

	LocalStorageFile   = "file"
	LocalStorageRedis  = "redis"
	LocalStorageMemory = "memory"
)

// StoreConfig selects the review backend.
type StoreConfig struct {
	Backend         string // database, local, remote
	LocalStorage    string // file, redis, memory
	LocalDir        string
	LocalQuotaBytes int // 0 means unlimited
}

type RemoteConfig struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerEnabled bool
}

// MirrorConfig points the local backend at a spreadsheet webhook. Empty URL disables it.
type MirrorConfig struct {
	URL     string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // S3-compatible endpoint, e.g. MinIO; empty means AWS
}

type SnapshotConfig struct {
	Cron string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "admin"),
			Password:     getEnv("DB_PASSWORD", "1234"),
			DBName:       getEnv("DB_NAME", "juveboxd"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "100"), 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(getEnv("REVIEW_BACKEND", BackendDatabase)),
			LocalStorage:    strings.ToLower(getEnv("LOCAL_STORAGE", LocalStorageFile)),
			LocalDir:        getEnv("LOCAL_STORAGE_DIR", "./data"),
			LocalQuotaBytes: parseInt(getEnv("LOCAL_STORAGE_QUOTA_BYTES", "5242880"), 5242880),
		},
		Remote: RemoteConfig{
			BaseURL:        getEnv("REMOTE_API_URL", "http://localhost:8080/api"),
			Timeout:        parseDuration(getEnv("REMOTE_API_TIMEOUT", "10s"), 10*time.Second),
			BreakerEnabled: parseBool(getEnv("REMOTE_API_BREAKER", "false")),
		},
		Mirror: MirrorConfig{
			URL:     getEnv("MIRROR_WEBHOOK_URL", ""),
			Timeout: parseDuration(getEnv("MIRROR_WEBHOOK_TIMEOUT", "10s"), 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "sa-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Snapshot: SnapshotConfig{
			Cron: getEnv("SNAPSHOT_CRON", "0 */6 * * *"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects unknown backend names.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendDatabase, BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("invalid REVIEW_BACKEND %q (want database, local or remote)", c.Store.Backend)
	}
	if c.Store.Backend == BackendLocal {
		switch c.Store.LocalStorage {
		case LocalStorageFile, LocalStorageRedis, LocalStorageMemory:
		default:
			return fmt.Errorf("invalid LOCAL_STORAGE %q (want file, redis or memory)", c.Store.LocalStorage)
		}
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
