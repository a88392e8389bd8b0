package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DBConfig centralizes PostgreSQL connection parameters instead of passing
// them around individually.
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DBName   string

	// Connection pool settings. The pool reuses connections instead of
	// opening a new one per query.
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// Retry settings for the initial connect
	MaxRetries     int
	RetryDelay     time.Duration
	ConnectTimeout time.Duration
}

// PostgresDB wraps the pgx connection pool and its lifecycle.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

func NewPostgresDB(cfg *DBConfig) *PostgresDB {
	return &PostgresDB{Config: cfg}
}

func (db *PostgresDB) buildConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		db.Config.Username,
		db.Config.Password,
		db.Config.Host,
		db.Config.Port,
		db.Config.DBName,
	)
}

func (db *PostgresDB) configurePool() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(db.buildConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = db.Config.MaxConns
	config.MinConns = db.Config.MinConns

	// Refresh connections periodically so stale ones (closed server-side or
	// dropped by network middleboxes) get replaced.
	config.MaxConnLifetime = db.Config.MaxConnLifetime
	config.MaxConnIdleTime = db.Config.MaxConnIdleTime
	config.HealthCheckPeriod = db.Config.HealthCheckPeriod

	config.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout

	return config, nil
}

// connectWithRetry connects with exponential backoff between attempts so a
// recovering database is not overwhelmed.
func (db *PostgresDB) connectWithRetry(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	var lastErr error

	delay := db.Config.RetryDelay
	for attempt := 1; attempt <= db.Config.MaxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				return pool, nil
			} else {
				pool.Close()
				lastErr = pingErr
			}
		} else {
			lastErr = err
		}

		log.Printf("[DB] Connect attempt %d/%d failed: %v", attempt, db.Config.MaxRetries, lastErr)

		if attempt < db.Config.MaxRetries {
			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", db.Config.MaxRetries, lastErr)
}

// Connect establishes the connection pool.
func (db *PostgresDB) Connect(ctx context.Context) error {
	config, err := db.configurePool()
	if err != nil {
		return err
	}

	pool, err := db.connectWithRetry(ctx, config)
	if err != nil {
		return err
	}

	db.Pool = pool
	return nil
}

// HealthCheck pings the database with a short timeout.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close releases the pool.
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
