// Package store is the only path to the relational row-store. It exposes
// a generic row-query contract (Select/Insert/Update/Delete/Count/Call)
// so callers never build SQL, and it can carry the caller's bearer
// credential so Postgres row-level security resolves the requesting user.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Row is one table row keyed by column name.
type Row = map[string]any

// Store is the row-query contract consumed by every component. The
// concrete Client talks to Postgres; tests substitute fakes.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, filters []Filter, patch Row) ([]Row, error)
	Delete(ctx context.Context, table string, filters []Filter) (int64, error)
	Count(ctx context.Context, table string, filters []Filter) (int, error)
	Call(ctx context.Context, proc string, args map[string]any) error
	WithToken(token string) Store
}

// Client implements Store against Postgres.
type Client struct {
	db    *sql.DB
	token string
}

// Open connects to Postgres and configures the pool.
func Open(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// DB exposes the underlying handle for migrations only.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Close() error { return c.db.Close() }

// WithToken returns a client that executes statements with the bearer
// credential's claims attached, so row-level security policies can
// resolve the requesting user.
func (c *Client) WithToken(token string) Store {
	return &Client{db: c.db, token: token}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// run executes fn directly, or inside a transaction with the request
// claims set when a token is attached.
func (c *Client) run(ctx context.Context, fn func(q querier) error) error {
	if c.token == "" {
		return fn(c.db)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	claims := claimsJSON(c.token)
	if _, err := tx.ExecContext(ctx, `SELECT set_config('request.jwt.claims', $1, true)`, claims); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// claimsJSON extracts the payload segment of a JWT as JSON text. A
// token that does not decode yields an empty claims object, which makes
// row-level security deny rather than leak.
func claimsJSON(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "{}"
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || !json.Valid(payload) {
		return "{}"
	}
	return string(payload)
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key
// failure. Auto-provisioning treats it as "already provisioned".
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsUnavailable reports whether err means the row-store itself is
// unreachable, as opposed to a statement failing. Connection trouble
// and Postgres class 08 (connection exception) or 57 (operator
// intervention, e.g. shutdown) qualify.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		return class == "08" || class == "57"
	}
	return false
}
