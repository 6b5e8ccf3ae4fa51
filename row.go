package recordsql

import "strings"

// ColumnType, bir kolonun serileştirmede hedeflenen skaler sınıfıdır.
// Sürücünün bildirdiği DatabaseTypeName değerinden ClassifyColumn ile çıkarılır.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeFloat
	TypeDecimal
	TypeBool
	TypeBinary
	TypeUUID
	TypeTemporal
	TypeJSON
)

func (t ColumnType) String() string {
	names := [...]string{"text", "integer", "float", "decimal", "bool", "binary", "uuid", "temporal", "json"}
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

var columnTypes = map[string]ColumnType{
	// integers
	"TINYINT": TypeInteger, "SMALLINT": TypeInteger, "MEDIUMINT": TypeInteger,
	"INT": TypeInteger, "INTEGER": TypeInteger, "BIGINT": TypeInteger, "YEAR": TypeInteger,
	"INT2": TypeInteger, "INT4": TypeInteger, "INT8": TypeInteger, "HUGEINT": TypeInteger,
	"UTINYINT": TypeInteger, "USMALLINT": TypeInteger, "UINTEGER": TypeInteger, "UBIGINT": TypeInteger,
	"SERIAL": TypeInteger, "BIGSERIAL": TypeInteger, "OID": TypeInteger,
	"UNSIGNED TINYINT": TypeInteger, "UNSIGNED SMALLINT": TypeInteger, "UNSIGNED MEDIUMINT": TypeInteger,
	"UNSIGNED INT": TypeInteger, "UNSIGNED BIGINT": TypeInteger,
	// floats
	"FLOAT": TypeFloat, "DOUBLE": TypeFloat, "REAL": TypeFloat,
	"FLOAT4": TypeFloat, "FLOAT8": TypeFloat, "DOUBLE PRECISION": TypeFloat,
	// exact numerics
	"DECIMAL": TypeDecimal, "NUMERIC": TypeDecimal, "MONEY": TypeDecimal, "SMALLMONEY": TypeDecimal,
	// booleans
	"BOOL": TypeBool, "BOOLEAN": TypeBool, "BIT": TypeBool,
	// binary
	"BINARY": TypeBinary, "VARBINARY": TypeBinary, "BLOB": TypeBinary, "TINYBLOB": TypeBinary,
	"MEDIUMBLOB": TypeBinary, "LONGBLOB": TypeBinary, "BYTEA": TypeBinary, "IMAGE": TypeBinary,
	"GEOMETRY": TypeBinary,
	// uuid
	"UUID": TypeUUID, "UNIQUEIDENTIFIER": TypeUUID,
	// temporal
	"DATE": TypeTemporal, "TIME": TypeTemporal, "DATETIME": TypeTemporal, "DATETIME2": TypeTemporal,
	"SMALLDATETIME": TypeTemporal, "DATETIMEOFFSET": TypeTemporal, "TIMESTAMP": TypeTemporal,
	"TIMESTAMPTZ": TypeTemporal, "TIMETZ": TypeTemporal, "INTERVAL": TypeTemporal,
	"TIMESTAMP WITH TIME ZONE": TypeTemporal, "TIMESTAMP_NS": TypeTemporal,
	"TIMESTAMP_MS": TypeTemporal, "TIMESTAMP_S": TypeTemporal,
	// json
	"JSON": TypeJSON, "JSONB": TypeJSON,
}

// ClassifyColumn, sürücünün bildirdiği tip adını bir ColumnType'a çevirir.
// "DECIMAL(10,2)" gibi parametreli adlar parantezden önceki kısma göre sınıflanır;
// tanınmayan tipler TypeText olur.
func ClassifyColumn(databaseType string) ColumnType {
	name := strings.ToUpper(strings.TrimSpace(databaseType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if t, ok := columnTypes[name]; ok {
		return t
	}
	return TypeText
}

// Field, bir satırdaki tek kolonun ham değeridir. Value nil ise kolon NULL'dur;
// aksi halde sürücüden gelen []byte/string ya da sürücüye özgü bir skalerdir.
type Field struct {
	Name         string
	Value        any
	Nullable     bool
	DatabaseType string
	Type         ColumnType
}

// Row, motorun döndürdüğü tek bir satırdır; kolonlar bildirildiği sırayla tutulur.
type Row []Field

// Columns, satırdaki kolon adlarını sırasıyla döndürür.
func (r Row) Columns() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}
