package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

type dbConfig struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
	pingTimeout     time.Duration
	retryAttempts   int
	retryDelay      time.Duration
}

type Option func(*dbConfig)

func WithConnectionPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(config *dbConfig) {
		config.maxOpenConns = maxOpen
		config.maxIdleConns = maxIdle
		config.connMaxLifetime = maxLifetime
	}
}

func WithConnectionIdleTime(idleTime time.Duration) Option {
	return func(config *dbConfig) {
		config.connMaxIdleTime = idleTime
	}
}

func WithPingTimeout(timeout time.Duration) Option {
	return func(config *dbConfig) {
		config.pingTimeout = timeout
	}
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(config *dbConfig) {
		config.retryAttempts = attempts
		config.retryDelay = delay
	}
}

func defaultConfig() dbConfig {
	return dbConfig{
		maxOpenConns:    25,
		maxIdleConns:    5,
		connMaxLifetime: time.Hour,
		connMaxIdleTime: time.Minute * 5,
		pingTimeout:     time.Second * 5,
		retryAttempts:   3,
		retryDelay:      time.Second,
	}
}

// Open connects to dsn and pings it, retrying on failure. ctx cancels the
// retry loop.
func Open(ctx context.Context, driver, dsn string, options ...Option) (*sql.DB, error) {
	config := defaultConfig()
	for _, option := range options {
		option(&config)
	}

	var err error
	for attempt := 0; attempt <= config.retryAttempts; attempt++ {
		var db *sql.DB
		db, err = sql.Open(driver, dsn)
		if err == nil {
			db.SetMaxOpenConns(config.maxOpenConns)
			db.SetMaxIdleConns(config.maxIdleConns)
			db.SetConnMaxLifetime(config.connMaxLifetime)
			db.SetConnMaxIdleTime(config.connMaxIdleTime)

			pingCtx, cancel := context.WithTimeout(ctx, config.pingTimeout)
			err = db.PingContext(pingCtx)
			cancel()

			if err == nil {
				return db, nil
			}
			_ = db.Close()
		}

		if attempt == config.retryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ErrFailedToOpenDatabase.WithDetail("driver", driver).WithCause(ctx.Err())
		case <-time.After(config.retryDelay):
		}
	}

	return nil, ErrFailedToOpenDatabase.WithDetail("driver", driver).WithCause(err)
}

// Rebind rewrites ? placeholders into the driver's native form.
func Rebind(driver, query string) string {
	if driver != "postgres" && driver != "pgx" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
