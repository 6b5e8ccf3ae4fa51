package recordsql

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// fakeConn is a scripted Conn. It records every statement it receives and
// fails any call that overlaps with another one on the same connection.
type fakeConn struct {
	mu       sync.Mutex
	queries  []string
	rows     map[string][]Row
	execs    map[string]ExecResult
	errs     map[string]error
	delay    time.Duration
	closed   bool
	closeErr error

	active      atomic.Int32
	overlapped  atomic.Bool
	lastInsertN atomic.Int64
}

var errInterleaved = errors.New("fake: statements interleaved on one connection")

func newFakeConn() *fakeConn {
	return &fakeConn{
		rows:  make(map[string][]Row),
		execs: make(map[string]ExecResult),
		errs:  make(map[string]error),
	}
}

func (c *fakeConn) enter(ctx context.Context) error {
	if c.active.Add(1) != 1 {
		c.overlapped.Store(true)
		c.active.Add(-1)
		return errInterleaved
	}
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			c.active.Add(-1)
			return ctx.Err()
		}
	}
	return nil
}

func (c *fakeConn) record(q string) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()
}

func (c *fakeConn) Query(ctx context.Context, q string) ([]Row, error) {
	if err := c.enter(ctx); err != nil {
		return nil, err
	}
	defer c.active.Add(-1)

	c.record(q)
	if err := c.errs[q]; err != nil {
		return nil, err
	}
	return c.rows[q], nil
}

func (c *fakeConn) Exec(ctx context.Context, q string) (ExecResult, error) {
	if err := c.enter(ctx); err != nil {
		return ExecResult{}, err
	}
	defer c.active.Add(-1)

	c.record(q)
	if err := c.errs[q]; err != nil {
		return ExecResult{}, err
	}
	if res, ok := c.execs[q]; ok {
		return res, nil
	}
	return ExecResult{RowsAffected: 1, LastInsertID: c.lastInsertN.Add(1)}, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.closeErr
}

func (c *fakeConn) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// fakeDialer hands out conn, or fails with err for the first fails calls.
type fakeDialer struct {
	conn  *fakeConn
	err   error
	fails int
	dials atomic.Int32
}

func (d *fakeDialer) Dial(ctx context.Context, id Identity) (Conn, error) {
	n := d.dials.Add(1)
	if d.err != nil && int(n) <= d.fails {
		return nil, d.err
	}
	return d.conn, nil
}

// connectedDB returns a DB that is already connected to a fresh fakeConn.
func connectedDB(opts ...Option) (*DB, *fakeConn) {
	conn := newFakeConn()
	db := New(&fakeDialer{conn: conn}, opts...)
	if err := db.Connect(context.Background(), Identity{User: "app", Host: "db", Database: "shop"}); err != nil {
		panic(err)
	}
	return db, conn
}

// memCache is an in-memory Cache used to observe DB cache behavior.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]Row
	tables      map[string][]string
	gets        int
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]Row), tables: make(map[string][]string)}
}

func (c *memCache) Get(_ context.Context, key string) ([]Row, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	rows, ok := c.entries[key]
	return rows, ok, nil
}

func (c *memCache) Set(_ context.Context, key, table string, rows []Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rows
	c.tables[table] = append(c.tables[table], key)
	return nil
}

func (c *memCache) Invalidate(_ context.Context, table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, table)
	if table == "" {
		c.entries = make(map[string][]Row)
		c.tables = make(map[string][]string)
		return nil
	}
	for _, k := range c.tables[table] {
		delete(c.entries, k)
	}
	delete(c.tables, table)
	return nil
}

func intField(name string, v int64) Field {
	return Field{Name: name, Value: v, DatabaseType: "BIGINT", Type: TypeInteger}
}

func textField(name, v string) Field {
	return Field{Name: name, Value: []byte(v), DatabaseType: "VARCHAR", Type: TypeText, Nullable: true}
}
