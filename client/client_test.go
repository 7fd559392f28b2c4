package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{"http://localhost:8080", "libsql", "http://localhost:8080"},
		{"https://db.example.com", "libsql", "https://db.example.com"},
		{"ws://localhost:8080", "libsql", "ws://localhost:8080"},
		{"wss://db.example.com", "libsql", "wss://db.example.com"},
		{"libsql://db.example.com", "libsql", "libsql://db.example.com"},
		{"file:local.db", "sqlite", "local.db"},
		{"local.db", "sqlite", "local.db"},
		{"/tmp/bench/local.db", "sqlite", "/tmp/bench/local.db"},
	}

	for _, tt := range tests {
		driver, dsn := ResolveDriver(tt.url)
		assert.Equal(t, tt.wantDriver, driver, "driver for %s", tt.url)
		assert.Equal(t, tt.wantDSN, dsn, "dsn for %s", tt.url)
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * from sqlite_schema", true},
		{"  select count(0) as c from pony", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"pragma journal_mode", true},
		{"explain select 1", true},
		{"insert into pony(name) VALUES (?)", false},
		{"create table pony (id, name)", false},
		{"drop table pony", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, returnsRows(tt.query), "query: %s", tt.query)
	}
}

func TestExecuteLocalFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	c, err := Open(ctx, path)
	require.NoError(t, err)
	defer c.Close()

	rs := c.Execute(ctx, "create table insert_test (id INTEGER PRIMARY KEY AUTOINCREMENT, description)")
	require.True(t, rs.OK(), "create failed: %v", rs.Err)
	assert.GreaterOrEqual(t, rs.Duration.Nanoseconds(), int64(0))

	rs = c.Execute(ctx, "insert into insert_test(description) VALUES (?)", "test")
	require.True(t, rs.OK(), "insert failed: %v", rs.Err)
	assert.EqualValues(t, 1, rs.RowsAffected)
	assert.EqualValues(t, 1, rs.LastInsertID)

	rs = c.Execute(ctx, "select * from insert_test")
	require.True(t, rs.OK(), "select failed: %v", rs.Err)
	assert.Equal(t, 1, rs.Count)
	assert.Equal(t, []string{"id", "description"}, rs.Columns)
	assert.Equal(t, "test", rs.Records[0]["description"])

	rs = c.Execute(ctx, "drop table insert_test")
	require.True(t, rs.OK(), "drop failed: %v", rs.Err)
}

func TestExecuteFailureIsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	c, err := Open(ctx, path)
	require.NoError(t, err)
	defer c.Close()

	rs := c.Execute(ctx, "create table pony (id, name)")
	require.True(t, rs.OK())

	// Duplicate DDL must fail inside the ResultSet, not panic or abort.
	rs = c.Execute(ctx, "create table pony (id, name)")
	assert.False(t, rs.OK())
	assert.Error(t, rs.Err)
}

func TestOpenBadLocalPath(t *testing.T) {
	ctx := context.Background()

	// Parent directory does not exist; ping must fail.
	_, err := Open(ctx, filepath.Join(t.TempDir(), "missing", "sub", "test.db"))
	assert.Error(t, err)
}
