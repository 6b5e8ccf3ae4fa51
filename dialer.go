package recordsql

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLDialer, database/sql üzerinden oturum açan Dialer'dır. Her Dial çağrısı
// kendi havuzunu açar ve tek bir *sql.Conn'u sabitler; böylece oturum tek bir
// fiziksel bağlantıya karşılık gelir.
type SQLDialer struct {
	driver         string
	params         map[string]string
	connectTimeout time.Duration
	scanner        Scanner
}

// NewSQLDialer, verilen database/sql sürücüsü için bir Dialer oluşturur.
// params sürücünün DSN parametrelerine eklenir.
func NewSQLDialer(driver string, params map[string]string, connectTimeout time.Duration, scanner Scanner) *SQLDialer {
	if scanner == nil {
		scanner = NewDefaultScanner()
	}
	return &SQLDialer{
		driver:         driver,
		params:         params,
		connectTimeout: connectTimeout,
		scanner:        scanner,
	}
}

// Dial, DSN'i oluşturur, bağlantıyı açar ve connectTimeout içinde ping atar.
func (d *SQLDialer) Dial(ctx context.Context, id Identity) (Conn, error) {
	dsn, err := BuildDSN(d.driver, id, d.params)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlDriverName(d.driver), dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if d.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.connectTimeout)
		defer cancel()
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}

	return &sqlConn{db: db, conn: conn, scanner: d.scanner}, nil
}

// sqlConn, sabitlenmiş bir *sql.Conn üzerinde Conn arayüzünü uygular.
type sqlConn struct {
	db      *sql.DB
	conn    *sql.Conn
	scanner Scanner
}

func (c *sqlConn) Query(ctx context.Context, query string) ([]Row, error) {
	rows, err := c.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.scanner.ScanRows(rows)
}

func (c *sqlConn) Exec(ctx context.Context, query string) (ExecResult, error) {
	res, err := c.conn.ExecContext(ctx, query)
	if err != nil {
		return ExecResult{}, err
	}

	var out ExecResult
	// Bazı sürücüler (pq, sqlserver) bu değerleri desteklemez; hata yok sayılır.
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out, nil
}

func (c *sqlConn) Close() error {
	return errors.Join(c.conn.Close(), c.db.Close())
}
