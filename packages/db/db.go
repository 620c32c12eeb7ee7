// Package db reads assertion subjects from SQL queries.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRows is returned when a subject query yields no rows.
var ErrNoRows = errors.New("query returned no rows")

const (
	pingTimeout         = 5 * time.Second
	DefaultQueryTimeout = 30 * time.Second
)

// Client is a database connection used to resolve query subjects.
type Client struct {
	db           *sql.DB
	driverName   string
	dataSource   string
	queryTimeout time.Duration
}

// NewClient opens and pings a database from a connection string.
func NewClient(ctx context.Context, connectionString string) (*Client, error) {
	driver, dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Client{
		db:           db,
		driverName:   driver,
		dataSource:   dsn,
		queryTimeout: DefaultQueryTimeout,
	}, nil
}

// SetQueryTimeout bounds each query. Zero or negative keeps the current value.
func (c *Client) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		c.queryTimeout = d
	}
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// QueryValue runs query and returns column from the first row. An empty
// column selects the first column. Byte slices are returned as strings.
func (c *Client) QueryValue(ctx context.Context, query, column string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	idx := 0
	if column != "" {
		idx = -1
		for i, name := range columns {
			if name == column {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("column %q not in result (have %s)", column, strings.Join(columns, ", "))
		}
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
		return nil, ErrNoRows
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	if b, ok := values[idx].([]byte); ok {
		return string(b), nil
	}
	return values[idx], nil
}

// parseConnectionString maps a connection string to driver and DSN.
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./test.db
func parseConnectionString(connStr string) (driver string, dsn string, err error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		dsn = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		dsn = strings.TrimPrefix(connStr, "sqlite:")
	case connStr == "":
		return "", "", fmt.Errorf("empty database connection string")
	default:
		scheme, _, _ := strings.Cut(connStr, ":")
		return "", "", fmt.Errorf("unsupported database scheme: %s", scheme)
	}

	if dsn == "" {
		return "", "", fmt.Errorf("missing sqlite database path in %q", connStr)
	}
	return "sqlite3", dsn, nil
}
