package config

import (
	"time"

	"pressline-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig builds the pgx pool configuration from environment
// variables. Kept separate from Load() so the worker can connect without
// pulling in the full application config.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		Username: getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "pressline"),

		MaxConns:          int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns:          int32(getEnvInt("DB_MIN_CONNS", 5)),
		MaxConnLifetime:   time.Duration(getEnvInt("DB_MAX_CONN_LIFETIME_MINUTES", 60)) * time.Minute,
		MaxConnIdleTime:   time.Duration(getEnvInt("DB_MAX_CONN_IDLE_MINUTES", 15)) * time.Minute,
		HealthCheckPeriod: time.Duration(getEnvInt("DB_HEALTH_CHECK_SECONDS", 60)) * time.Second,

		MaxRetries:     getEnvInt("DB_MAX_RETRIES", 3),
		RetryDelay:     time.Duration(getEnvInt("DB_RETRY_DELAY_SECONDS", 2)) * time.Second,
		ConnectTimeout: time.Duration(getEnvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	return cfg, nil
}
