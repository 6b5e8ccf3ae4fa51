package main

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	recordsql "github.com/biyonik/go-record-sql"
)

// stubConn answers every read with rows and every write with a single affected row.
type stubConn struct {
	mu      sync.Mutex
	rows    []recordsql.Row
	queries []string
}

func (c *stubConn) Query(_ context.Context, q string) ([]recordsql.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, q)
	return c.rows, nil
}

func (c *stubConn) Exec(_ context.Context, q string) (recordsql.ExecResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, q)
	return recordsql.ExecResult{RowsAffected: 1, LastInsertID: 7}, nil
}

func (c *stubConn) Close() error { return nil }

type stubDialer struct{ conn *stubConn }

func (d stubDialer) Dial(context.Context, recordsql.Identity) (recordsql.Conn, error) {
	return d.conn, nil
}

func setupTestCLI(t *testing.T) *stubConn {
	t.Helper()
	conn := &stubConn{rows: []recordsql.Row{
		{
			{Name: "id", Value: int64(2), DatabaseType: "BIGINT", Type: recordsql.TypeInteger},
			{Name: "name", Value: []byte("bob"), DatabaseType: "VARCHAR", Type: recordsql.TypeText},
			{Name: "nickname", Nullable: true, DatabaseType: "VARCHAR", Type: recordsql.TypeText},
		},
	}}

	prev := openDB
	openDB = func(ctx context.Context, cfg *recordsql.Config, opts ...recordsql.Option) (*recordsql.DB, error) {
		db := recordsql.New(stubDialer{conn}, opts...)
		return db, db.Connect(ctx, cfg.Identity)
	}
	t.Cleanup(func() { openDB = prev })
	return conn
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"null", nil},
		{"NULL", nil},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"2.5", 2.5},
		{"true", true},
		{"false", false},
		{"bob", "bob"},
		{"'42'", "42"},
		{"'null'", "null"},
		{"''", ""},
		{"'", "'"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"name=bob", "age=30", "note='a=b'", "nickname=null"})
	require.NoError(t, err)
	assert.Equal(t, recordsql.Values{"name": "bob", "age": int64(30), "note": "a=b", "nickname": nil}, values)

	for _, bad := range []string{"name", "=bob", " =1"} {
		_, err := parseAssignments([]string{bad})
		assert.ErrorIs(t, err, recordsql.ErrInvalidArgument, bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(""))
}

func TestRender(t *testing.T) {
	recs := []recordsql.Record{
		{{Key: "id", Value: int64(2)}, {Key: "name", Value: "bob"}},
		{{Key: "id", Value: int64(3)}, {Key: "name", Value: "carol"}},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "json", "", recs))
		out := buf.String()
		assert.Equal(t, int64(2), gjson.Get(out, "#").Int())
		assert.Equal(t, "carol", gjson.Get(out, "1.name").String())
		assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"id"`)), bytes.Index(buf.Bytes(), []byte(`"name"`)))
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "yaml", "", recs))
		assert.Equal(t, "- id: 2\n  name: bob\n- id: 3\n  name: carol\n", buf.String())
	})

	t.Run("template", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "template", `{{range .}}{{.name | upper}};{{end}}`, recs))
		assert.Equal(t, "BOB;CAROL;", buf.String())
	})

	t.Run("exec result", func(t *testing.T) {
		var buf bytes.Buffer
		res := toExecResult(recordsql.ExecResult{RowsAffected: 3, LastInsertID: 9})
		require.NoError(t, render(&buf, "json", "", res))
		assert.Equal(t, "Success", gjson.Get(buf.String(), "code").String())
		assert.Equal(t, int64(3), gjson.Get(buf.String(), "rows_affected").Int())
	})

	t.Run("errors", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, render(&buf, "xml", "", recs))
		assert.Error(t, render(&buf, "template", "", recs))
		assert.Error(t, render(&buf, "template", "{{", recs))
	})
}

func TestRun_First(t *testing.T) {
	conn := setupTestCLI(t)

	code, out, _ := runCLI(t, "-host", "db", "first", "users", "-where", "id = 2", "-columns", "id,name")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"SELECT `id`, `name` FROM `users` WHERE id = 2 LIMIT 1"}, conn.queries)
	assert.Equal(t, "bob", gjson.Get(out, "0.name").String())
	assert.True(t, gjson.Get(out, "0.nickname").Exists())
	assert.Equal(t, gjson.Null, gjson.Get(out, "0.nickname").Type)
}

func TestRun_AllOrdered(t *testing.T) {
	conn := setupTestCLI(t)

	code, _, _ := runCLI(t, "all", "users", "-order", "age,name", "-desc")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"SELECT * FROM `users` ORDER BY `age` DESC, `name` DESC"}, conn.queries)
}

func TestRun_Writes(t *testing.T) {
	conn := setupTestCLI(t)

	code, out, _ := runCLI(t, "insert", "users", "id=5", "name='007'")
	require.Equal(t, 0, code)
	assert.Equal(t, int64(7), gjson.Get(out, "last_insert_id").Int())

	code, _, _ = runCLI(t, "update", "users", "-where", "id = 5", "nickname=null")
	require.Equal(t, 0, code)

	code, out, _ = runCLI(t, "-format", "yaml", "delete", "users", "-where", "id = 5")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "rows_affected: 1")

	assert.Equal(t, []string{
		"INSERT INTO `users` (`id`, `name`) VALUES (5, '007')",
		"UPDATE `users` SET `nickname` = NULL WHERE id = 5",
		"DELETE FROM `users` WHERE id = 5",
	}, conn.queries)
}

func TestRun_Raw(t *testing.T) {
	conn := setupTestCLI(t)

	code, out, _ := runCLI(t, "-format", "template", "-template", `{{range .}}{{.id}}{{end}}`, "select", "SELECT id FROM users")
	require.Equal(t, 0, code)
	assert.Equal(t, "2", out)

	code, _, _ = runCLI(t, "query", "CREATE TABLE t (id INT)")
	require.Equal(t, 0, code)

	code, _, stderr := runCLI(t, "mutate", "SELECT 1")
	assert.Equal(t, int(recordsql.CodeQueryTypeMismatch), code)
	assert.NotEmpty(t, stderr)

	assert.Equal(t, []string{"SELECT id FROM users", "CREATE TABLE t (id INT)"}, conn.queries)
}

func TestRun_UsageErrors(t *testing.T) {
	conn := setupTestCLI(t)
	invalid := int(recordsql.CodeInvalidArgument)

	tests := map[string][]string{
		"no command":      {},
		"unknown command": {"drop", "users"},
		"no table":        {"all"},
		"bad assignment":  {"insert", "users", "id"},
		"no sql":          {"select"},
		"unknown flag":    {"all", "users", "-limit", "3"},
		"write ordering":  {"delete", "users", "-order", "id"},
		"bad driver":      {"-driver", "oracle", "all", "users"},
		"empty update":    {"update", "users"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, _ := runCLI(t, args...)
			assert.Equal(t, invalid, code)
		})
	}
	assert.Empty(t, conn.queries)
}

func TestRun_MissingConfigFile(t *testing.T) {
	setupTestCLI(t)
	code, _, stderr := runCLI(t, "-config", "/nonexistent/recordsql.yaml", "all", "users")
	assert.Equal(t, int(recordsql.CodeInvalidArgument), code)
	assert.Contains(t, stderr, "recordsql.yaml")
}
