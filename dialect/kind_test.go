package dialect_test

import (
	"testing"

	"github.com/biyonik/go-record-sql/dialect"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want dialect.Kind
	}{
		{"select", "SELECT * FROM users", dialect.KindSelect},
		{"lowercase", "select 1", dialect.KindSelect},
		{"parenthesized", "(SELECT 1) UNION (SELECT 2)", dialect.KindSelect},
		{"show", "SHOW TABLES", dialect.KindSelect},
		{"describe", "DESCRIBE users", dialect.KindSelect},
		{"explain", "EXPLAIN SELECT 1", dialect.KindSelect},
		{"insert", "INSERT INTO users VALUES (1)", dialect.KindInsert},
		{"replace", "REPLACE INTO users VALUES (1)", dialect.KindInsert},
		{"update", "UPDATE users SET a = 1", dialect.KindUpdate},
		{"delete", "DELETE FROM users", dialect.KindDelete},
		{"comment before", "-- cleanup\nDELETE FROM users", dialect.KindDelete},
		{"block comment before", "/* report */ SELECT 1", dialect.KindSelect},
		{"cte select", "WITH a AS (SELECT 1) SELECT * FROM a", dialect.KindSelect},
		{"cte delete", "WITH a AS (SELECT id FROM t) DELETE FROM t WHERE id IN (SELECT id FROM a)", dialect.KindDelete},
		{"cte modifying delete", "WITH d AS (DELETE FROM users RETURNING *) SELECT * FROM d", dialect.KindDelete},
		{"cte modifying update", "WITH u AS (UPDATE users SET a = 1 RETURNING id) SELECT id FROM u", dialect.KindUpdate},
		{"cte modifying insert", "WITH i AS (INSERT INTO t VALUES (1) RETURNING *) SELECT * FROM i", dialect.KindInsert},
		{"cte modifying merge", "WITH m AS MATERIALIZED (MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN DELETE RETURNING *) SELECT * FROM m", dialect.KindOther},
		{"cte outer insert wins", "WITH d AS (DELETE FROM a RETURNING *) INSERT INTO b SELECT * FROM d", dialect.KindInsert},
		{"unterminated batch", "SELECT 1 DELETE FROM users", dialect.KindOther},
		{"select into", "SELECT * INTO backup FROM users", dialect.KindOther},
		{"explain analyze delete", "EXPLAIN ANALYZE DELETE FROM users", dialect.KindOther},
		{"locking read", "SELECT * FROM users WHERE id = 1 FOR UPDATE", dialect.KindSelect},
		{"show create", "SHOW CREATE TABLE users", dialect.KindSelect},
		{"create", "CREATE TABLE users (id INT)", dialect.KindOther},
		{"drop", "DROP TABLE users", dialect.KindOther},
		{"set", "SET NAMES utf8mb4", dialect.KindOther},
		{"quoted keyword", "'SELECT'", dialect.KindOther},
		{"empty", "", dialect.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dialect.DetectKind(tt.sql); got != tt.want {
				t.Errorf("DetectKind(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestSingleStatement(t *testing.T) {
	tests := []struct {
		name string
		g    dialect.Grammar
		sql  string
		want bool
	}{
		{"single", dialect.MySQL(), "SELECT 1", true},
		{"trailing semicolon", dialect.Postgres(), "SELECT 1;", true},
		{"stacked", dialect.Postgres(), "SELECT 1; DELETE FROM users", false},
		{"stacked batch", dialect.SQLServer(), "SELECT 1 DELETE FROM users; SELECT 2", false},
		{"semicolon in literal", dialect.DuckDB(), "SELECT ';' AS s", true},
		{"mysql escaped quote", dialect.MySQL(), `SELECT 'a\'; DELETE FROM t; --'`, true},
		{"postgres backslash is literal", dialect.Postgres(), `SELECT 'a\'; DELETE FROM t; --'`, false},
		{"dollar body", dialect.Postgres(), "CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.SingleStatement(tt.sql); got != tt.want {
				t.Errorf("SingleStatement(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}

func TestKind_Paths(t *testing.T) {
	tests := []struct {
		kind  dialect.Kind
		read  bool
		write bool
		name  string
	}{
		{dialect.KindSelect, true, false, "SELECT"},
		{dialect.KindInsert, false, true, "INSERT"},
		{dialect.KindUpdate, false, true, "UPDATE"},
		{dialect.KindDelete, false, true, "DELETE"},
		{dialect.KindOther, false, false, "OTHER"},
	}

	for _, tt := range tests {
		if tt.kind.IsRead() != tt.read || tt.kind.IsWrite() != tt.write {
			t.Errorf("%v: IsRead=%v IsWrite=%v, want %v %v", tt.kind, tt.kind.IsRead(), tt.kind.IsWrite(), tt.read, tt.write)
		}
		if tt.kind.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.kind.String(), tt.name)
		}
	}
}
