package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Transcriber TranscriberConfig
	Extractor   ExtractorConfig
	Clinical    ClinicalConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration. Enabled=false falls back to the
// in-process identity cache.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// StorageConfig holds audio archive storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// TranscriberConfig selects and configures the transcription provider
type TranscriberConfig struct {
	Provider string // "whisper" or "assemblyai"
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// ExtractorConfig configures the chat-completion extraction service
type ExtractorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ClinicalConfig points the consultation core at the clinical records API.
// Defaults to this process's own listen address so a single deployment is
// self-contained, but any server speaking the same contract works.
type ClinicalConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "clinic_assistant"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", "5m"),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", true),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "clinic-consultations"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Transcriber: TranscriberConfig{
			Provider: getEnv("TRANSCRIBER_PROVIDER", "whisper"),
			BaseURL:  getEnv("TRANSCRIBER_API_URL", "https://api.openai.com"),
			APIKey:   getEnv("TRANSCRIBER_API_KEY", ""),
			Model:    getEnv("TRANSCRIBER_MODEL", "whisper-1"),
			Timeout:  getEnvAsDuration("TRANSCRIBER_TIMEOUT", "60s"),
		},
		Extractor: ExtractorConfig{
			BaseURL: getEnv("EXTRACTOR_API_URL", "https://api.groq.com"),
			APIKey:  getEnv("EXTRACTOR_API_KEY", ""),
			Model:   getEnv("EXTRACTOR_MODEL", "llama-3.1-70b-versatile"),
			Timeout: getEnvAsDuration("EXTRACTOR_TIMEOUT", "60s"),
		},
		Clinical: ClinicalConfig{
			BaseURL: getEnv("CLINICAL_API_URL", "http://localhost:8080/v1"),
			Timeout: getEnvAsDuration("CLINICAL_API_TIMEOUT", "15s"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Transcriber.Provider {
	case "whisper", "assemblyai":
	default:
		return fmt.Errorf("TRANSCRIBER_PROVIDER must be whisper or assemblyai, got %q", c.Transcriber.Provider)
	}
	if c.Clinical.BaseURL == "" {
		return fmt.Errorf("CLINICAL_API_URL is required")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
