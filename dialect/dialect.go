// Package dialect, farklı veritabanları için SQL dilbilgisi (grammar) implementasyonlarını sağlar.
// Ana paketteki sorgu tanımları (Statement) burada veritabanına özgü SQL metnine derlenir:
// identifier tırnaklama, değer literal'leri, LIMIT/TOP farkları ve koşul bağlama.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dialect

import (
	"errors"
	"strings"

	"github.com/biyonik/go-record-sql/internal/validation"
)

// ----------------------------------------------------------------------------
// Statement Kind
// ----------------------------------------------------------------------------

// Kind, bir SQL ifadesinin türüdür (okuma veya yazma).
type Kind int

const (
	KindOther Kind = iota // DDL, SET, USE vb.
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

// String, Kind'ın SQL anahtar kelimesi karşılığını döndürür.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return "OTHER"
	}
}

// IsRead, satır döndüren bir okuma ifadesi mi?
func (k Kind) IsRead() bool {
	return k == KindSelect
}

// IsWrite, INSERT/UPDATE/DELETE ifadelerinden biri mi?
func (k Kind) IsWrite() bool {
	return k == KindInsert || k == KindUpdate || k == KindDelete
}

var leadingKinds = map[string]Kind{
	"SELECT":   KindSelect,
	"SHOW":     KindSelect,
	"DESCRIBE": KindSelect,
	"DESC":     KindSelect,
	"EXPLAIN":  KindSelect,
	"VALUES":   KindSelect,
	"TABLE":    KindSelect,
	"INSERT":   KindInsert,
	"REPLACE":  KindInsert,
	"UPDATE":   KindUpdate,
	"DELETE":   KindDelete,
}

// DetectKind, ham SQL metninin türünü baştaki anahtar kelimeden çıkarır.
// Yorumlar, baştaki parantezler ve string literal'ler dikkate alınmaz.
// WITH ile başlayan ifadelerde CTE listesinden sonraki ilk üst düzey komut esas alınır;
// ancak gövdesi veri değiştiren bir CTE varsa SELECT yerine o CTE'nin türü döner.
// Üst düzeyinde yazma anahtar kelimesi taşıyan okuma ifadeleri KindOther sayılır.
func DetectKind(sql string) Kind {
	first := validation.LeadingKeyword(sql)
	lead := first
	if lead == "WITH" {
		lead = validation.FirstTopLevel(sql, "SELECT", "INSERT", "UPDATE", "DELETE")
		if lead == "SELECT" {
			if w := validation.ModifyingCTE(sql); w != "" {
				lead = w
			}
		}
	}

	k, ok := leadingKinds[lead]
	if !ok {
		return KindOther
	}
	if k == KindSelect && !metadataKeywords[first] && validation.TopLevelWrite(sql) != "" {
		return KindOther
	}
	return k
}

// metadataKeywords, "SHOW CREATE TABLE" gibi yazma kelimesi içerebilen salt okunur komutlardır.
var metadataKeywords = map[string]bool{"SHOW": true, "DESCRIBE": true, "DESC": true}

// ----------------------------------------------------------------------------
// Statement Interface (import döngüsünü kırmak için)
// ----------------------------------------------------------------------------

// Statement, Grammar implementasyonlarının derleme için ihtiyaç duyduğu arayüzdür.
// Ana paketteki *Query bu arayüzü uygular.
type Statement interface {
	GetKind() Kind
	GetText() string // ham sorgu metni; doluysa olduğu gibi kullanılır
	GetTable() string
	GetColumns() []string
	GetCondition() string
	GetBindings() []any
	GetOrderColumns() []string
	IsAscending() bool
	GetLimit() int
	GetAssignments() []Assignment
}

// Assignment, INSERT/UPDATE için tek bir kolon = değer eşlemesidir.
type Assignment struct {
	Column string
	Value  any
}

// Raw, literal'e çevrilmeden olduğu gibi SQL'e yazılan ifadedir (örn. NOW()).
// Yalnızca güvenilir kaynaklardan gelen metinler için kullanılmalıdır.
type Raw string

// ----------------------------------------------------------------------------
// Grammar Interface
// ----------------------------------------------------------------------------

// Grammar, sorgu bileşenlerini veritabanına özgü SQL ifadelerine çevirir.
type Grammar interface {
	// Name, gramerin kimliğini döndürür (örn. "mysql", "postgres").
	Name() string

	// Wrap, bir kolon adını veritabanına özgü tırnaklarla sarar.
	Wrap(identifier string) (string, error)

	// WrapTable, tablo adını sarar ve alias yönetir.
	WrapTable(table string) (string, error)

	// Literal, bir Go değerini kaçırılmış SQL literal'ine çevirir.
	Literal(value any) (string, error)

	// Bind, koşul metnindeki '?' yer tutucularını sırasıyla literal'lerle değiştirir.
	Bind(condition string, args []any) (string, error)

	// Compile, Statement'ı tek bir SQL metnine derler.
	Compile(s Statement) (string, error)

	// DateFormat, time.Time literal'leri için kullanılan formattır.
	DateFormat() string

	// SingleStatement, metnin ';' ile ayrılmış birden fazla ifade içermediğini
	// gramerin literal kurallarına göre kontrol eder.
	SingleStatement(sql string) bool
}

// ForDriver, database/sql driver adına karşılık gelen grameri döndürür.
func ForDriver(driver string) (Grammar, error) {
	switch strings.ToLower(driver) {
	case "mysql", "mariadb":
		return MySQL(), nil
	case "postgres", "postgresql", "pgx":
		return Postgres(), nil
	case "sqlserver", "mssql", "azuresql":
		return SQLServer(), nil
	case "duckdb":
		return DuckDB(), nil
	}
	return nil, &DialectError{Message: "no grammar for driver " + driver, Err: ErrUnknownDriver}
}

// ----------------------------------------------------------------------------
// Sentinel Errors (dialect-specific)
// ----------------------------------------------------------------------------

// Ana paket ile import döngüsünü önlemek için burada tanımlanmıştır.
var (
	ErrNoTable          = errors.New("dialect: no table specified")
	ErrNoAssignments    = errors.New("dialect: no column assignments")
	ErrUnknownKind      = errors.New("dialect: statement kind cannot be compiled")
	ErrUnsupportedValue = errors.New("dialect: unsupported value type")
	ErrPlaceholderCount = errors.New("dialect: placeholder count mismatch")
	ErrAliasNotAllowed  = errors.New("dialect: table alias not allowed here")
	ErrUnknownDriver    = errors.New("dialect: unknown driver")
)

// DialectError, sentinel bir hataya ayrıntı ekler.
type DialectError struct {
	Message string
	Err     error
}

// Error, hatayı string olarak döndürür.
func (e *DialectError) Error() string {
	return "dialect: " + e.Message
}

// Unwrap, errors.Is ile sentinel karşılaştırmasına izin verir.
func (e *DialectError) Unwrap() error {
	return e.Err
}
