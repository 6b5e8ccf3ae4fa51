package recordsql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("mysql", "SELECT * FROM `users`")
	assert.Equal(t, a, CacheKey("mysql", "SELECT * FROM `users`"))
	assert.NotEqual(t, a, CacheKey("postgres", "SELECT * FROM `users`"))
	assert.NotEqual(t, a, CacheKey("mysql", "SELECT * FROM `orders`"))
}

func TestCacheCodec_PreservesScannedValues(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	rows := []Row{{
		intField("id", 2),
		textField("name", "bob"),
		{Name: "nickname", Nullable: true, Type: TypeText},
		{Name: "score", Value: 9.5, DatabaseType: "DOUBLE", Type: TypeFloat},
		{Name: "big", Value: uint64(1 << 63), DatabaseType: "UBIGINT", Type: TypeInteger},
		{Name: "active", Value: true, DatabaseType: "BOOLEAN", Type: TypeBool},
		{Name: "seen", Value: ts, DatabaseType: "TIMESTAMP", Type: TypeTemporal},
		{Name: "blob", Value: []byte{}, DatabaseType: "BLOB", Type: TypeBinary},
	}}

	data, err := encodeRows(rows)
	require.NoError(t, err)

	got, err := decodeRows(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rows[0][:6], got[0][:6])
	assert.True(t, ts.Equal(got[0][6].Value.(time.Time)))
	assert.Equal(t, []byte{}, got[0][7].Value)
}

func TestCacheCodec_RejectsDriverSpecificValues(t *testing.T) {
	_, err := encodeRows([]Row{{{Name: "x", Value: struct{}{}}}})
	assert.ErrorIs(t, err, errUncacheable)
}

func TestRedisCache_Integration(t *testing.T) {
	addr := os.Getenv("RECORDSQL_REDIS_ADDR")
	if addr == "" {
		t.Skip("RECORDSQL_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "recordsql-test:" + time.Now().Format("150405.000000") + ":"
	c := NewRedisCache(client, prefix, time.Minute)
	rows := []Row{{intField("id", 1), textField("name", "alice")}}

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", "users", rows))
	require.NoError(t, c.Set(ctx, "k2", "orders", rows))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rows, got)

	require.NoError(t, c.Invalidate(ctx, "users"))
	_, ok, _ = c.Get(ctx, "k1")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "k2")
	assert.True(t, ok, "other tables are kept")

	require.NoError(t, c.Invalidate(ctx, ""))
	_, ok, _ = c.Get(ctx, "k2")
	assert.False(t, ok)
}
