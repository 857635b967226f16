package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ErrConnectivity is returned when the connection pool cannot be established
var ErrConnectivity = errors.New("database unreachable")

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for all connections
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create connection pool: %w", ErrConnectivity, err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrConnectivity, err)
	}

	return &DB{Pool: pool}, nil
}

// ConnectWithRetry keeps calling NewConnection on a fixed interval until it
// succeeds or ctx is cancelled. Only connectivity failures are retried.
func ConnectWithRetry(ctx context.Context, databaseURL string, interval time.Duration) (*DB, error) {
	var db *DB
	operation := func() error {
		conn, err := NewConnection(ctx, databaseURL)
		if err != nil {
			if errors.Is(err, ErrConnectivity) {
				return err
			}
			return backoff.Permanent(err)
		}
		db = conn
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"error": err,
			"retry": wait,
		}).Error("Error initializing database, trying again")
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return db, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
