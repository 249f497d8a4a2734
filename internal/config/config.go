package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Ranking  RankingConfig

	// EnvFile is false when no .env file was found and only the process
	// environment was used.
	EnvFile bool
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string `validate:"required_if=Enabled true"`
	APIKey     string
	Collection string `validate:"required_if=Enabled true"`
	Enabled    bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	UploadPath  string `validate:"required"`
	MaxFileSize int64  `validate:"gt=0"`
}

type WorkerConfig struct {
	Concurrency       int           `validate:"min=1"`
	RetryMaxAttempts  int           `validate:"min=1"`
	RetryInitialDelay time.Duration `validate:"gte=0"`
	PollInterval      time.Duration `validate:"gt=0"`
}

type RankingConfig struct {
	Concurrency    int           `validate:"min=1"`
	ScoringTimeout time.Duration `validate:"gt=0"`
	ParserTimeout  time.Duration `validate:"gt=0"`
}

func Load() *Config {
	envFile := godotenv.Load() == nil

	return &Config{
		EnvFile: envFile,
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_ranker"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resumes"),
			Enabled:    getEnvAsBool("RESUME_INDEX_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 2),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", 2*time.Second),
			PollInterval:      getEnvAsDuration("WORKER_POLL_INTERVAL", 10*time.Second),
		},
		Ranking: RankingConfig{
			Concurrency:    getEnvAsInt("RANKING_CONCURRENCY", 8),
			ScoringTimeout: getEnvAsDuration("SCORING_TIMEOUT", 5*time.Second),
			ParserTimeout:  getEnvAsDuration("PARSER_TIMEOUT", 60*time.Second),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// Validate rejects settings the services cannot run with, such as a zero
// concurrency or a missing index collection while the index is enabled.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAs parses key with parse and falls back to defaultValue when the
// variable is unset or malformed.
func getEnvAs[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	return getEnvAs(key, defaultValue, strconv.Atoi)
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	return getEnvAs(key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func getEnvAsBool(key string, defaultValue bool) bool {
	return getEnvAs(key, defaultValue, strconv.ParseBool)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnvAs(key, defaultValue, time.ParseDuration)
}
