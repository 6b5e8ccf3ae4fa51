package recordsql

import (
	"github.com/biyonik/go-record-sql/dialect"
	"github.com/biyonik/go-record-sql/internal/validation"
)

// Query, oluşturulduktan sonra değişmeyen sorgu tanımıdır. Türü (Kind) oluşturma
// anında belirlenir: yapılandırılmış kurucular kendi türünü taşır, RawQuery ise
// metnin baştaki anahtar kelimesinden türü çıkarır.
//
// Oluşturma sırasında yakalanan ilk hata Err() ile okunur; hatalı bir Query
// motora hiç gönderilmez.
type Query struct {
	kind        dialect.Kind
	text        string
	table       string
	columns     []string
	condition   string
	bindings    []any
	orders      []string
	ascending   bool
	limit       int
	assignments []dialect.Assignment
	err         error
}

var _ dialect.Statement = (*Query)(nil)

// Kind, sorgunun türünü döndürür.
func (q *Query) Kind() dialect.Kind { return q.kind }

// Table, hedef tabloyu döndürür; ham sorgularda boştur.
func (q *Query) Table() string { return q.table }

// Err, oluşturma sırasında oluşan hatayı döndürür.
func (q *Query) Err() error { return q.err }

// IsRaw, sorgunun ham metinden oluşturulup oluşturulmadığını döndürür.
func (q *Query) IsRaw() bool { return q.text != "" }

// ToSQL, sorguyu verilen gramerle SQL metnine derler.
func (q *Query) ToSQL(g dialect.Grammar) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	sql, err := g.Compile(q)
	if err != nil {
		return "", invalidArgument("compile", err)
	}
	return sql, nil
}

// cacheTable, önbellek etiketi olarak kullanılan tablo adıdır. Alias ve şema
// atılır; böylece "users u" okuması "users" yazmasıyla temizlenir.
func (q *Query) cacheTable() string {
	name, _, err := validation.ValidateTableWithAlias(q.table)
	if err != nil {
		return q.table
	}
	parts := validation.SplitQualified(name)
	return parts[len(parts)-1]
}

// readsOtherTables, koşulun alt sorgu içerip içermediğini söyler. Alt sorgunun
// okuduğu tablolar bilinmediğinden bu sonuçlar önbelleğe alınmaz.
func (q *Query) readsOtherTables() bool {
	for _, t := range validation.Tokenize(q.condition) {
		if t.Word == "SELECT" {
			return true
		}
	}
	return false
}

// withPrefix, tablo adına önek eklenmiş bir kopya döndürür.
func (q *Query) withPrefix(prefix string) *Query {
	if prefix == "" || q.table == "" {
		return q
	}
	c := *q
	c.table = prefix + q.table
	return &c
}

func (q *Query) GetKind() dialect.Kind                { return q.kind }
func (q *Query) GetText() string                      { return q.text }
func (q *Query) GetTable() string                     { return q.table }
func (q *Query) GetColumns() []string                 { return q.columns }
func (q *Query) GetCondition() string                 { return q.condition }
func (q *Query) GetBindings() []any                   { return q.bindings }
func (q *Query) GetOrderColumns() []string            { return q.orders }
func (q *Query) IsAscending() bool                    { return q.ascending }
func (q *Query) GetLimit() int                        { return q.limit }
func (q *Query) GetAssignments() []dialect.Assignment { return q.assignments }

