package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultTimeout = 5 * time.Second

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// Config captures the settings for opening the PostgreSQL pool.
type Config struct {
	DSN     string
	Timeout time.Duration
}

// Client wraps the connection pool together with the goqu query builder and
// the per-call timeout applied by every repository.
type Client struct {
	db      *sql.DB
	qb      *goqu.Database
	timeout time.Duration
}

// Open creates the pool using the pgx driver and validates connectivity with a
// ping.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	c := New(db, cfg.Timeout)

	if err := c.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return c, nil
}

// New wraps an already opened *sql.DB. A default timeout is applied when none
// is provided.
func New(db *sql.DB, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		db:      db,
		qb:      goqu.New("postgres", db),
		timeout: timeout,
	}
}

// DB returns the underlying pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the pool can reach the server within the client timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.db.PingContext(ctx)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (c *Client) Migrate(ctx context.Context) error {
	return c.execScript(ctx, "migrate", schemaSQL)
}

// Seed loads the demo fixture when the users table is empty. It reports
// whether any rows were inserted.
func (c *Client) Seed(ctx context.Context) (bool, error) {
	query, args, err := c.qb.From("users").Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("seed: build count query: %w", err)
	}

	countCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := c.db.QueryRowContext(countCtx, query, args...).Scan(&n); err != nil {
		return false, storeError("seed: count users", err)
	}
	if n > 0 {
		return false, nil
	}

	if err := c.execScript(ctx, "seed", seedSQL); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) execScript(ctx context.Context, name, script string) error {
	ctx, cancel := context.WithTimeout(ctx, 6*c.timeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError(name+": begin", err)
	}
	defer safeRollback(tx)

	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", name, storeError("exec statement", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError(name+": commit", err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// splitStatements breaks a script on semicolons that end a line, skipping
// comment-only chunks.
func splitStatements(script string) []string {
	var out []string
	for _, chunk := range strings.Split(script, ";\n") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSuffix(strings.TrimSpace(strings.Join(lines, "\n")), ";")
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func safeRollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
