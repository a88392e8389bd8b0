package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc là function type được execute trong transaction
type TxFunc func(pgx.Tx) error

// WithTransaction wraps một function trong transaction
// Auto rollback nếu có error, auto commit nếu success
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer rollback (sẽ bị ignore nếu đã commit)
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p) // Re-throw panic
		} else if err != nil {
			tx.Rollback(ctx)
		}
	}()

	err = fn(tx)
	if err != nil {
		return err // Defer sẽ rollback
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult wraps function có return value trong transaction
func WithTransactionResult[T any](ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := WithTransaction(ctx, pool, func(tx pgx.Tx) error {
		r, fnErr := fn(tx)
		if fnErr != nil {
			return fnErr
		}
		result = r
		return nil
	})

	return result, err
}
