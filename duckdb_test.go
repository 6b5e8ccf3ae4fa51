//go:build cgo

package recordsql

import (
	"context"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func openDuckDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Driver = "duckdb"
	cfg.Debug = true

	opts = append([]Option{WithLogger(NewLogrLogger(testr.New(t)))}, opts...)
	db, err := Open(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDuckDB_UsersScenario(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	res, err := db.ExecuteQuery(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR NOT NULL, age INTEGER, nickname VARCHAR)")
	require.NoError(t, err)
	assert.False(t, res.IsRead())

	for _, v := range []Values{
		{"id": 1, "name": "alice", "age": 30},
		{"id": 2, "name": "bob", "age": 25},
		{"id": 3, "name": "carol", "age": 41, "nickname": nil},
	} {
		r, err := db.InsertInto(ctx, "users", v)
		require.NoError(t, err)
		assert.Equal(t, int64(1), r.RowsAffected)
	}

	first, err := db.SelectFirst(ctx, "users", Where("id = ?", 2))
	require.NoError(t, err)
	require.Len(t, first, 1)
	name, _ := first[0].Get("name")
	assert.Equal(t, "bob", name)
	assert.Equal(t, []string{"id", "name", "age", "nickname"}, first[0].Keys())

	del, err := db.DeleteAllFrom(ctx, "users", Where("id = 1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.RowsAffected)

	all, err := db.SelectAll(ctx, "users", OrderBy("age"), Descending())
	require.NoError(t, err)
	require.Len(t, all, 2)
	first2, _ := all[0].Get("name")
	assert.Equal(t, "carol", first2)
	for _, rec := range all {
		id, _ := rec.Get("id")
		assert.NotEqual(t, int64(1), id)
	}

	nick, ok := all[0].Get("nickname")
	assert.True(t, ok)
	assert.Nil(t, nick)

	upd, err := db.UpdateAll(ctx, "users", Values{"nickname": "cc"}, Where("name = ?", "carol"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.RowsAffected)

	none, err := db.SelectAll(ctx, "users", Where("age > 100"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDuckDB_EngineErrors(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	_, err := db.SelectAll(ctx, "missing_table")
	assert.ErrorIs(t, err, ErrEngine)

	_, err = db.ExecuteQuery(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = db.InsertInto(ctx, "t", Values{"id": 1})
	require.NoError(t, err)
	res, err := db.InsertInto(ctx, "t", Values{"id": 1})
	require.Error(t, err)
	assert.False(t, res.OK())
}

func TestDuckDB_ConcurrentInserts(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	_, err := db.ExecuteQuery(ctx, "CREATE TABLE events (id INTEGER, note VARCHAR)")
	require.NoError(t, err)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := db.InsertInto(gctx, "events", Values{"id": i, "note": "x"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	recs, err := db.ExecuteSelectQuery(ctx, "SELECT count(*) AS n FROM events")
	require.NoError(t, err)
	n, _ := recs[0].Get("n")
	assert.Equal(t, int64(16), n)
}
