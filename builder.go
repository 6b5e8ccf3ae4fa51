package recordsql

import (
	"errors"
	"sort"
	"strings"

	"github.com/biyonik/go-record-sql/dialect"
	"github.com/biyonik/go-record-sql/internal/validation"
)

// Bu dosya, beş sorgu biçimi (selectFirst, selectAll, updateAll, deleteAllFrom,
// insertInto) ve ham SQL için Query kurucularını içerir. Kurucular durum tutmaz;
// her çağrı yeni ve değişmez bir Query üretir.
//
// Genel kullanım örneği:
//
//	q := recordsql.SelectAll("users",
//	    recordsql.Where("status = ?", "active"),
//	    recordsql.OrderBy("created_at"),
//	    recordsql.Descending(),
//	)
//	records, err := db.Select(ctx, q)
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com

// Values, INSERT/UPDATE için kolon → değer eşlemesidir. Kolonlar SQL'e
// alfabetik sırayla yazılır; böylece çıktı deterministiktir.
type Values map[string]any

// QueryOption, bir Query'yi oluşturulurken şekillendiren fonksiyondur.
type QueryOption func(*Query)

// Where, koşul parçasını belirler. Koşul metni olduğu gibi eklenir; başındaki
// isteğe bağlı "WHERE" kelimesi atılır, boş koşul WHERE üretmez.
// args verilirse koşuldaki her '?' sırayla gramerin kaçırılmış literal'iyle değiştirilir.
func Where(condition string, args ...any) QueryOption {
	return func(q *Query) {
		if q.kind == dialect.KindInsert {
			q.fail(errors.New("INSERT does not take a condition"))
			return
		}
		q.condition = condition
		q.bindings = args
	}
}

// OrderBy, SELECT sonucunu verilen kolonlara göre sıralar. Yalnızca SELECT için geçerlidir.
func OrderBy(columns ...string) QueryOption {
	return func(q *Query) {
		if q.kind != dialect.KindSelect {
			q.fail(errors.New("ORDER BY is only valid for SELECT"))
			return
		}
		if len(columns) == 0 {
			q.fail(errors.New("empty order column list"))
			return
		}
		if err := validation.ValidateColumns(columns); err != nil {
			q.fail(err)
			return
		}
		q.orders = append([]string(nil), columns...)
	}
}

// Ascending, sıralama yönünü belirler. Varsayılan artan sıradır.
func Ascending(asc bool) QueryOption {
	return func(q *Query) {
		q.ascending = asc
	}
}

// Descending, Ascending(false) için kısa yoldur.
func Descending() QueryOption {
	return Ascending(false)
}

// Columns, SELECT'in döndüreceği kolonları belirler. Verilmezse "*" kullanılır.
func Columns(columns ...string) QueryOption {
	return func(q *Query) {
		if q.kind != dialect.KindSelect {
			q.fail(errors.New("column selection is only valid for SELECT"))
			return
		}
		if err := validation.ValidateColumns(columns); err != nil {
			q.fail(err)
			return
		}
		q.columns = append([]string(nil), columns...)
	}
}

func (q *Query) fail(err error) {
	if q.err == nil {
		q.err = invalidArgument("build "+strings.ToLower(q.kind.String()), err)
	}
}

func newQuery(kind dialect.Kind, table string, opts []QueryOption) *Query {
	q := &Query{kind: kind, table: strings.TrimSpace(table), ascending: true}
	if q.table == "" {
		q.fail(dialect.ErrNoTable)
	} else if _, _, err := validation.ValidateTableWithAlias(q.table); err != nil {
		q.fail(err)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	return q
}

func (q *Query) assign(values Values) {
	if len(values) == 0 {
		q.fail(dialect.ErrNoAssignments)
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := validation.ValidateColumns(keys); err != nil {
		q.fail(err)
		return
	}

	q.assignments = make([]dialect.Assignment, len(keys))
	for i, k := range keys {
		q.assignments[i] = dialect.Assignment{Column: k, Value: values[k]}
	}
}

// SelectFirst, tablodaki ilk kaydı seçen sorguyu oluşturur (LIMIT 1).
func SelectFirst(table string, opts ...QueryOption) *Query {
	q := newQuery(dialect.KindSelect, table, opts)
	q.limit = 1
	return q
}

// SelectAll, koşula uyan tüm kayıtları seçen sorguyu oluşturur.
func SelectAll(table string, opts ...QueryOption) *Query {
	return newQuery(dialect.KindSelect, table, opts)
}

// UpdateAll, koşula uyan tüm kayıtları güncelleyen sorguyu oluşturur.
// Boş values InvalidArgument hatası üretir.
func UpdateAll(table string, values Values, opts ...QueryOption) *Query {
	q := newQuery(dialect.KindUpdate, table, opts)
	q.assign(values)
	return q
}

// DeleteAllFrom, koşula uyan tüm kayıtları silen sorguyu oluşturur.
// Koşul verilmezse tablodaki bütün kayıtlar silinir.
func DeleteAllFrom(table string, opts ...QueryOption) *Query {
	return newQuery(dialect.KindDelete, table, opts)
}

// InsertInto, tek bir kayıt ekleyen sorguyu oluşturur.
// Boş values InvalidArgument hatası üretir.
func InsertInto(table string, values Values) *Query {
	q := newQuery(dialect.KindInsert, table, nil)
	q.assign(values)
	return q
}

// RawQuery, çağıranın yazdığı SQL metninden bir Query oluşturur. Tür, metnin
// baştaki anahtar kelimesinden çıkarılır (bkz. dialect.DetectKind).
func RawQuery(text string) *Query {
	q := &Query{text: strings.TrimSpace(text), ascending: true}
	if q.text == "" {
		q.err = invalidArgument("build raw", errors.New("empty query text"))
		return q
	}
	q.kind = dialect.DetectKind(q.text)
	return q
}
