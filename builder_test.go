package recordsql

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-record-sql/dialect"
)

func toSQL(t *testing.T, q *Query) string {
	t.Helper()
	sql, err := q.ToSQL(dialect.MySQL())
	require.NoError(t, err)
	return sql
}

func TestBuilder_SQL(t *testing.T) {
	tests := []struct {
		name string
		q    *Query
		want string
	}{
		{"select first", SelectFirst("users"), "SELECT * FROM `users` LIMIT 1"},
		{"select first with condition", SelectFirst("users", Where("id = 2")), "SELECT * FROM `users` WHERE id = 2 LIMIT 1"},
		{"select all", SelectAll("users"), "SELECT * FROM `users`"},
		{
			"select all ordered descending",
			SelectAll("users", Where("age > ?", 30), OrderBy("name", "id"), Descending()),
			"SELECT * FROM `users` WHERE age > 30 ORDER BY `name` DESC, `id` DESC",
		},
		{"select columns", SelectAll("users u", Columns("u.id", "u.name")), "SELECT `u`.`id`, `u`.`name` FROM `users` AS `u`"},
		{"update", UpdateAll("users", Values{"name": "bob", "age": 31}, Where("id = 2")), "UPDATE `users` SET `age` = 31, `name` = 'bob' WHERE id = 2"},
		{"update everything", UpdateAll("users", Values{"active": false}), "UPDATE `users` SET `active` = FALSE"},
		{"delete", DeleteAllFrom("users", Where("id = 1")), "DELETE FROM `users` WHERE id = 1"},
		{"delete everything", DeleteAllFrom("users"), "DELETE FROM `users`"},
		{"insert", InsertInto("users", Values{"id": 3, "name": "carol", "nickname": nil}), "INSERT INTO `users` (`id`, `name`, `nickname`) VALUES (3, 'carol', NULL)"},
		{"raw", RawQuery("  SELECT 1  "), "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toSQL(t, tt.q))
		})
	}
}

func TestBuilder_EmptyConditionEquivalence(t *testing.T) {
	plain := toSQL(t, SelectAll("users"))
	for _, cond := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, plain, toSQL(t, SelectAll("users", Where(cond))), "condition %q", cond)
	}
	assert.Equal(t, toSQL(t, DeleteAllFrom("users")), toSQL(t, DeleteAllFrom("users", Where(""))))
	assert.Equal(t, toSQL(t, UpdateAll("users", Values{"a": 1})), toSQL(t, UpdateAll("users", Values{"a": 1}, Where(" "))))
}

func TestBuilder_InsertColumnsMatchValues(t *testing.T) {
	for n := 1; n <= 6; n++ {
		values := Values{}
		for i := 0; i < n; i++ {
			values[string(rune('a'+i))] = i
		}
		q := InsertInto("t", values)
		require.NoError(t, q.Err())
		assert.Len(t, q.GetAssignments(), n)

		sql := toSQL(t, q)
		cols, vals, ok := strings.Cut(strings.TrimPrefix(sql, "INSERT INTO `t` "), " VALUES ")
		require.True(t, ok, sql)
		assert.Equal(t, n, strings.Count(cols, ",")+1, sql)
		assert.Equal(t, n, strings.Count(vals, ",")+1, sql)
	}
}

func TestBuilder_Idempotent(t *testing.T) {
	build := func() *Query {
		return UpdateAll("users", Values{"b": 2, "a": 1, "c": "x"}, Where("id = ?", 7))
	}
	first := toSQL(t, build())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, toSQL(t, build()))
	}

	q := build()
	assert.Equal(t, toSQL(t, q), toSQL(t, q))
}

func TestBuilder_Kinds(t *testing.T) {
	assert.Equal(t, dialect.KindSelect, SelectFirst("t").Kind())
	assert.Equal(t, dialect.KindSelect, SelectAll("t").Kind())
	assert.Equal(t, dialect.KindUpdate, UpdateAll("t", Values{"a": 1}).Kind())
	assert.Equal(t, dialect.KindDelete, DeleteAllFrom("t").Kind())
	assert.Equal(t, dialect.KindInsert, InsertInto("t", Values{"a": 1}).Kind())
	assert.Equal(t, dialect.KindDelete, RawQuery("delete from t").Kind())
	assert.Equal(t, dialect.KindOther, RawQuery("CREATE TABLE t (a INT)").Kind())
	assert.True(t, RawQuery("SELECT 1").IsRaw())
	assert.False(t, SelectAll("t").IsRaw())
}

func TestBuilder_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		q    *Query
	}{
		{"empty table", SelectAll("")},
		{"blank table", DeleteAllFrom("   ")},
		{"injected table", SelectAll("users; DROP TABLE users")},
		{"empty update assignments", UpdateAll("users", Values{})},
		{"nil update assignments", UpdateAll("users", nil)},
		{"empty insert values", InsertInto("users", Values{})},
		{"bad column", InsertInto("users", Values{"na me": 1})},
		{"order on delete", DeleteAllFrom("users", OrderBy("id"))},
		{"empty order", SelectAll("users", OrderBy())},
		{"bad order column", SelectAll("users", OrderBy("id; DROP"))},
		{"columns on update", UpdateAll("users", Values{"a": 1}, Columns("a"))},
		{"empty raw", RawQuery("   ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Err()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
			assert.Equal(t, CodeInvalidArgument, CodeOf(err))

			_, err = tt.q.ToSQL(dialect.MySQL())
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestBuilder_CompileErrorIsInvalidArgument(t *testing.T) {
	q := SelectAll("users", Where("id = ? OR id = ?", 1))
	require.NoError(t, q.Err())

	_, err := q.ToSQL(dialect.MySQL())
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, dialect.ErrPlaceholderCount)
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	q := SelectAll("", OrderBy())
	require.Error(t, q.Err())
	assert.ErrorIs(t, q.Err(), dialect.ErrNoTable)
}

func TestQuery_WithPrefix(t *testing.T) {
	q := SelectAll("users")
	p := q.withPrefix("app_")

	assert.Equal(t, "users", q.Table())
	assert.Equal(t, "app_users", p.Table())
	assert.Equal(t, "SELECT * FROM `app_users`", toSQL(t, p))

	raw := RawQuery("SELECT 1")
	assert.Same(t, raw, raw.withPrefix("app_"))
}
