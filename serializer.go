package recordsql

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/shopspring/decimal"
)

// Serializer, motorun ham satırlarını sıralı Record'lara çevirir.
// NULL değerler kolon bazında kayıtlı varsayılanla (yoksa genel varsayılanla) değiştirilir.
type Serializer struct {
	defaults map[string]any
	fallback any
}

// SerializerOption, Serializer yapılandırma fonksiyonudur.
type SerializerOption func(*Serializer)

// WithDefault, column NULL geldiğinde kullanılacak değeri belirler.
func WithDefault(column string, value any) SerializerOption {
	return func(s *Serializer) {
		s.defaults[column] = value
	}
}

// WithFallbackDefault, kolon bazında varsayılanı olmayan NULL'lar için değeri belirler.
// Verilmezse nil kullanılır.
func WithFallbackDefault(value any) SerializerOption {
	return func(s *Serializer) {
		s.fallback = value
	}
}

// NewSerializer, yeni bir Serializer oluşturur.
func NewSerializer(opts ...SerializerOption) *Serializer {
	s := &Serializer{defaults: make(map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultFor, column için NULL yerine geçecek değeri döndürür.
func (s *Serializer) DefaultFor(column string) any {
	if v, ok := s.defaults[column]; ok {
		return v
	}
	return s.fallback
}

// SerializeRow, satırdaki her kolonu bildirildiği sırayla serileştirir.
func (s *Serializer) SerializeRow(row Row) (Record, error) {
	rec := make(Record, 0, len(row))
	for _, f := range row {
		v, err := SerializeField(f, s.DefaultFor(f.Name))
		if err != nil {
			return nil, err
		}
		rec = append(rec, Entry{Key: f.Name, Value: v})
	}
	return rec, nil
}

// SerializeRows, satırları tembel biçimde serileştiren tek kullanımlık bir yineleyici döndürür.
func (s *Serializer) SerializeRows(rows []Row) *Records {
	return &Records{serializer: s, rows: rows}
}

// Records, satırları sırayla Record'a çeviren sonlu ve yeniden başlatılamaz yineleyicidir.
//
//	it := serializer.SerializeRows(rows)
//	for it.Next() {
//	    rec := it.Record()
//	}
//	if err := it.Err(); err != nil { ... }
type Records struct {
	serializer *Serializer
	rows       []Row
	pos        int
	current    Record
	err        error
}

// Next, bir sonraki satırı serileştirir. Satır kalmadığında veya hata oluştuğunda false döner.
func (it *Records) Next() bool {
	if it.err != nil || it.pos >= len(it.rows) {
		it.current = nil
		it.rows = nil
		return false
	}

	rec, err := it.serializer.SerializeRow(it.rows[it.pos])
	it.pos++
	if err != nil {
		it.err = err
		it.current = nil
		return false
	}
	it.current = rec
	return true
}

// Record, Next'in son ürettiği kaydı döndürür.
func (it *Records) Record() Record {
	return it.current
}

// Err, yinelemeyi durduran hatayı döndürür.
func (it *Records) Err() error {
	return it.err
}

// Collect, kalan bütün kayıtları tüketir. Satır yoksa boş (nil olmayan) dilim döner.
func (it *Records) Collect() ([]Record, error) {
	n := len(it.rows) - it.pos
	if n < 0 {
		n = 0
	}
	out := make([]Record, 0, n)
	for it.Next() {
		out = append(out, it.current)
	}
	if it.err != nil {
		return nil, it.err
	}
	return out, nil
}

// SerializeField, tek bir ham değeri kolonun tipine göre dönüştürür.
//
//   - Değer yok ve kolon nullable ise defaultValue döner (nil olabilir).
//   - Değer yok ve kolon nullable değilse UnexpectedNull hatası döner.
//   - Aksi halde değer Field.Type'a göre çevrilir; çevrilemezse TypeCoercionError döner.
func SerializeField(f Field, defaultValue any) (any, error) {
	if f.Value == nil {
		if f.Nullable {
			return defaultValue, nil
		}
		return nil, &Error{
			Code: CodeUnexpectedNull,
			Op:   "serialize",
			Err:  fmt.Errorf("column %q is not nullable but has no value", f.Name),
		}
	}

	v, err := coerce(f)
	if err != nil {
		return nil, &Error{
			Code: CodeTypeCoercion,
			Op:   "serialize",
			Err:  fmt.Errorf("column %q (%s): %w", f.Name, f.Type, err),
		}
	}
	return v, nil
}

func coerce(f Field) (any, error) {
	switch f.Type {
	case TypeInteger:
		return toInteger(f.Value)
	case TypeFloat:
		return toFloat(f.Value)
	case TypeDecimal:
		return toDecimal(f.Value)
	case TypeBool:
		return toBool(f.Value, f.DatabaseType)
	case TypeBinary:
		return toBinary(f.Value)
	case TypeUUID:
		return toUUID(f.Value, f.DatabaseType)
	case TypeJSON:
		return toJSON(f.Value)
	case TypeTemporal:
		if s, ok := asText(f.Value); ok {
			return s, nil
		}
		return f.Value, nil
	}
	if s, ok := asText(f.Value); ok {
		return s, nil
	}
	return f.Value, nil
}

func asText(v any) (string, bool) {
	switch x := v.(type) {
	case []byte:
		return string(x), true
	case string:
		return x, true
	}
	return "", false
}

func toInteger(v any) (any, error) {
	if s, ok := asText(v); ok {
		s = strings.TrimSpace(s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as integer", s)
		}
		return u, nil
	}

	switch x := v.(type) {
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), nil
		}
		if x.IsUint64() {
			return x.Uint64(), nil
		}
		return nil, fmt.Errorf("integer %s overflows 64 bits", x)
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x), nil
		}
		return nil, fmt.Errorf("float %v is not an integer", x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), nil
		}
		return u, nil
	}
	return nil, fmt.Errorf("unsupported integer source %T", v)
}

func toFloat(v any) (any, error) {
	if s, ok := asText(v); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as float", s)
		}
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("unsupported float source %T", v)
}

func toDecimal(v any) (any, error) {
	if s, ok := asText(v); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %q as decimal", s)
		}
		return d, nil
	}

	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case *big.Int:
		return decimal.NewFromBigInt(x, 0), nil
	case fmt.Stringer:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil, fmt.Errorf("parse %q as decimal", x.String())
		}
		return d, nil
	}
	return nil, fmt.Errorf("unsupported decimal source %T", v)
}

func toBool(v any, databaseType string) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case []byte:
		// MySQL BIT(1) tek bayt olarak gelir.
		if len(x) == 1 && (x[0] == 0 || x[0] == 1) {
			return x[0] == 1, nil
		}
		if isBitType(databaseType) {
			if n, ok := bitValue(x); ok {
				return n, nil
			}
		}
	case string:
		if isBitType(databaseType) {
			if n, ok := bitValue([]byte(x)); ok {
				return n, nil
			}
		}
	}

	if s, ok := asText(v); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %q as bool", s)
		}
		return b, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	}
	return nil, fmt.Errorf("unsupported bool source %T", v)
}

func isBitType(databaseType string) bool {
	name := strings.ToUpper(strings.TrimSpace(databaseType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name == "BIT"
}

// bitValue, BIT(n) değerini işaretsiz tamsayıya çevirir. PostgreSQL "0101" gibi
// bit dizisi metni, MySQL ise big-endian ham bayt döndürür. Tek karakterlik
// "0"/"1" metni bool olarak kalsın diye burada ele alınmaz.
func bitValue(raw []byte) (uint64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	if isBitString(raw) {
		if len(raw) == 1 || len(raw) > 64 {
			return 0, false
		}
		n, err := strconv.ParseUint(string(raw), 2, 64)
		return n, err == nil
	}
	if len(raw) > 8 {
		return 0, false
	}
	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return n, true
}

func isBitString(raw []byte) bool {
	for _, b := range raw {
		if b != '0' && b != '1' {
			return false
		}
	}
	return true
}

func toBinary(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("unsupported binary source %T", v)
}

func toUUID(v any, databaseType string) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case []byte:
		if len(x) == 16 {
			if strings.EqualFold(databaseType, "UNIQUEIDENTIFIER") {
				// SQL Server ilk üç grubu little-endian saklar.
				var u mssql.UniqueIdentifier
				if err := u.Scan(x); err != nil {
					return nil, err
				}
				return uuid.UUID(u), nil
			}
			return uuid.FromBytes(x)
		}
	}

	if s, ok := asText(v); ok {
		u, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parse %q as uuid", s)
		}
		return u, nil
	}
	return nil, fmt.Errorf("unsupported uuid source %T", v)
}

func toJSON(v any) (any, error) {
	if s, ok := asText(v); ok {
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("invalid json document")
		}
		return json.RawMessage(s), nil
	}
	return v, nil
}
