package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Providers ProvidersConfig
	Pipeline  PipelineConfig
	MinIO     MinIOConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Secret ký operator tokens cho admin API
	Secret string
}

// ProvidersConfig mô tả danh sách content providers theo thứ tự ưu tiên.
// Order quyết định fallback order của Orchestrator - strictly sequential.
type ProvidersConfig struct {
	Order  []string // e.g. ["openai", "gemini"]
	OpenAI OpenAIConfig
	Gemini GeminiConfig
}

type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration   // per-attempt timeout
	CostPer1K decimal.Decimal // USD per 1000 tokens, for spend accounting
}

type GeminiConfig struct {
	APIKey    string
	Model     string
	Timeout   time.Duration
	CostPer1K decimal.Decimal
}

// PipelineConfig điều khiển campaign pipeline behavior
type PipelineConfig struct {
	// WordTarget là word count yêu cầu cho mỗi article
	WordTarget int

	// MinLengthRatio: output ngắn hơn WordTarget*ratio bị coi là soft failure
	// và orchestrator chuyển qua provider tiếp theo
	MinLengthRatio float64

	// MaxExhaustedResumes: số lần generation exhaustion liên tiếp trước khi
	// campaign bị mark failed (thay vì giữ active để resume sau)
	MaxExhaustedResumes int

	// JobStaleAfter: job ở trạng thái processing lâu hơn ngưỡng này được coi
	// là stale và eligible cho reclaim (reclaim là explicit operation)
	JobStaleAfter time.Duration

	// SweepStalledAfter: campaign active không có update lâu hơn ngưỡng này
	// được recovery sweep re-drive
	SweepStalledAfter time.Duration

	// CommentEndpointURL: outbound endpoint nhận derived comments. Để trống
	// thì comment jobs được skip (vẫn success)
	CommentEndpointURL string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Pressline API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pressline"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Secret: getEnv("AUTH_SECRET", "change-me-in-production"),
		},
		Providers: ProvidersConfig{
			Order: splitList(getEnv("PROVIDER_ORDER", "openai,gemini")),
			OpenAI: OpenAIConfig{
				APIKey:    getEnv("OPENAI_API_KEY", ""),
				BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				Timeout:   time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 90)) * time.Second,
				CostPer1K: getEnvDecimal("OPENAI_COST_PER_1K", "0.0006"),
			},
			Gemini: GeminiConfig{
				APIKey:    getEnv("GEMINI_API_KEY", ""),
				Model:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
				Timeout:   time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 90)) * time.Second,
				CostPer1K: getEnvDecimal("GEMINI_COST_PER_1K", "0.0004"),
			},
		},
		Pipeline: PipelineConfig{
			WordTarget:          getEnvInt("PIPELINE_WORD_TARGET", 800),
			MinLengthRatio:      getEnvFloat("PIPELINE_MIN_LENGTH_RATIO", 0.5),
			MaxExhaustedResumes: getEnvInt("PIPELINE_MAX_EXHAUSTED_RESUMES", 3),
			JobStaleAfter:       time.Duration(getEnvInt("JOB_STALE_AFTER_MINUTES", 30)) * time.Minute,
			SweepStalledAfter:   time.Duration(getEnvInt("SWEEP_STALLED_AFTER_MINUTES", 15)) * time.Minute,
			CommentEndpointURL:  getEnv("COMMENT_ENDPOINT_URL", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "pressline-archive"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Auth.Secret == "change-me-in-production" {
			return fmt.Errorf("AUTH_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if len(c.Providers.Order) == 0 {
		return fmt.Errorf("PROVIDER_ORDER must list at least one provider")
	}
	for _, id := range c.Providers.Order {
		if id != "openai" && id != "gemini" {
			return fmt.Errorf("unknown provider %q in PROVIDER_ORDER", id)
		}
	}

	if c.Pipeline.WordTarget <= 0 {
		return fmt.Errorf("PIPELINE_WORD_TARGET must be positive")
	}
	if c.Pipeline.MinLengthRatio <= 0 || c.Pipeline.MinLengthRatio > 1 {
		return fmt.Errorf("PIPELINE_MIN_LENGTH_RATIO must be in (0, 1]")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		d, _ = decimal.NewFromString(defaultValue)
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
