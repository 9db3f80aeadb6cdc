// Package database implements the persistence gateway: a single pooled
// PostgreSQL handle that is opened once, retried on failure and reused by
// every repository.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrConfiguration is returned when no connection string is configured.
	ErrConfiguration = errors.New("database is not configured")
	// ErrConnection is returned once the retry budget is exhausted.
	ErrConnection = errors.New("database connection failed")
)

// Options tunes the gateway's retry budget and pool.
type Options struct {
	DSN             string
	Attempts        int
	RetryDelay      time.Duration
	Timeout         time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
}

// Health is the result of a live connectivity probe.
type Health struct {
	Healthy bool
	State   string
	Latency time.Duration
}

// Gateway owns the shared *sql.DB.
type Gateway struct {
	opts   Options
	logger logging.Logger
	open   func(driverName, dsn string) (*sql.DB, error)

	mu sync.Mutex
	db *sql.DB
}

func New(opts Options, logger logging.Logger) *Gateway {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Gateway{
		opts:   opts,
		logger: logger.With("module", "database"),
		open:   sql.Open,
	}
}

// Connect returns the shared pool, establishing it on first use.
func (g *Gateway) Connect(ctx context.Context) (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		return g.db, nil
	}

	if g.opts.DSN == "" {
		return nil, ErrConfiguration
	}

	attempt := 0
	b := retry.WithMaxRetries(uint64(g.opts.Attempts-1), retry.NewConstant(g.opts.RetryDelay))

	db, err := retry.DoValue(ctx, b, func(ctx context.Context) (*sql.DB, error) {
		attempt++
		db, err := g.dial(ctx)
		if err != nil {
			g.logger.Warn(ctx, "database connection attempt failed",
				"attempt", attempt, "max_attempts", g.opts.Attempts, "error", err)
			return nil, retry.RetryableError(err)
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrConnection, attempt, err)
	}

	g.logger.Info(ctx, "database connected", "attempt", attempt)
	g.db = db
	return db, nil
}

func (g *Gateway) dial(ctx context.Context) (*sql.DB, error) {
	db, err := g.open("pgx", g.opts.DSN)
	if err != nil {
		return nil, err
	}

	if g.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(g.opts.MaxOpenConns)
	}
	if g.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(g.opts.MaxIdleConns)
	}
	if g.opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(g.opts.ConnMaxIdleTime)
	}

	pingCtx := ctx
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Probe pings the pool and reports latency. It never returns an error.
func (g *Gateway) Probe(ctx context.Context) Health {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return Health{State: "disconnected"}
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := db.PingContext(ctx)
	h := Health{Latency: time.Since(start)}
	if err != nil {
		g.logger.Warn(ctx, "database health check failed", "error", err)
		h.State = "unreachable"
		return h
	}
	h.Healthy = true
	h.State = "connected"
	return h
}

// HealthCheck reports live connectivity.
func (g *Gateway) HealthCheck(ctx context.Context) bool {
	return g.Probe(ctx).Healthy
}

// Close releases the pool. It is safe to call more than once.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}
