// Package client wraps database/sql with a single Execute entry point
// that works against both benchmark targets: a local SQLite file and a
// remote sqld server speaking the libsql protocol. The driver is picked
// from the URL scheme.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Client is a connection to one benchmark target.
type Client struct {
	URL string

	db *sql.DB
}

// ResultSet is the unified outcome of one Execute call. Records are only
// populated for row-returning statements; RowsAffected and LastInsertID
// only for the rest. Err holds a statement failure so callers can treat
// expected failures (duplicate DDL) as data rather than aborting.
type ResultSet struct {
	Columns      []string
	Records      []map[string]any
	Count        int
	RowsAffected int64
	LastInsertID int64
	Duration     time.Duration
	Err          error
}

// OK reports whether the statement succeeded.
func (r *ResultSet) OK() bool {
	return r != nil && r.Err == nil
}

// ResolveDriver maps a target URL to a database/sql driver name and DSN.
// http, https, ws, wss and libsql URLs go to the libsql driver; anything
// else is treated as a local SQLite file path.
func ResolveDriver(rawURL string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(rawURL, "http://"),
		strings.HasPrefix(rawURL, "https://"),
		strings.HasPrefix(rawURL, "ws://"),
		strings.HasPrefix(rawURL, "wss://"),
		strings.HasPrefix(rawURL, "libsql://"):
		return "libsql", rawURL
	default:
		return "sqlite", strings.TrimPrefix(rawURL, "file:")
	}
}

// Open connects to the target and verifies the connection with a ping.
func Open(ctx context.Context, rawURL string) (*Client, error) {
	driver, dsn := ResolveDriver(rawURL)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rawURL, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping %s: %w", rawURL, err)
	}

	return &Client{URL: rawURL, db: db}, nil
}

// Execute runs a single statement and times it. A failure is returned
// inside the ResultSet, not as an error: the benchmark treats statement
// failures as observations (some are expected), while transport-level
// errors still surface through ResultSet.Err for the caller to inspect.
func (c *Client) Execute(ctx context.Context, query string, args ...any) *ResultSet {
	start := time.Now()

	var rs *ResultSet
	if returnsRows(query) {
		rs = c.query(ctx, query, args...)
	} else {
		rs = c.exec(ctx, query, args...)
	}

	rs.Duration = time.Since(start)

	return rs
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) query(ctx context.Context, query string, args ...any) *ResultSet {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &ResultSet{Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return &ResultSet{Err: err}
	}

	records := make([]map[string]any, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return &ResultSet{Columns: columns, Err: err}
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return &ResultSet{Columns: columns, Err: err}
	}

	return &ResultSet{
		Columns: columns,
		Records: records,
		Count:   len(records),
	}
}

func (c *Client) exec(ctx context.Context, query string, args ...any) *ResultSet {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &ResultSet{Err: err}
	}

	rs := &ResultSet{}

	// Not every driver supports these; the libsql http transport does
	// not report them for all statements.
	if n, err := res.RowsAffected(); err == nil {
		rs.RowsAffected = n
	}

	if id, err := res.LastInsertId(); err == nil {
		rs.LastInsertID = id
	}

	return rs
}

// returnsRows reports whether the statement should go through the query
// path of database/sql instead of the exec path.
func returnsRows(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, prefix := range []string{"select", "with", "pragma", "explain"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}

	return false
}
