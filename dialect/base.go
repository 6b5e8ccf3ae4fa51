package dialect

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/biyonik/go-record-sql/internal/validation"
)

// ----------------------------------------------------------------------------
// Base Grammar (ortak fonksiyonlar)
// ----------------------------------------------------------------------------

// BaseGrammar, tüm gramer implementasyonları için ortak derleyicidir.
// Veritabanları arasındaki farklar bu alanlarla ifade edilir; her gramer
// kendi constructor'ında bu alanları doldurur.
type BaseGrammar struct {
	name       string
	dateFormat string

	quoteOpen  string
	quoteClose string

	topLimit         bool   // SELECT TOP n (SQL Server)
	backslashEscapes bool   // string içinde \ kaçış karakteri (MySQL)
	nationalStrings  bool   // N'...' (SQL Server)
	boolTrue         string // TRUE veya 1
	boolFalse        string // FALSE veya 0

	bytesLiteral func([]byte) string
}

// Name, gramerin adını döndürür.
func (g *BaseGrammar) Name() string {
	return g.name
}

// DateFormat, gramerin tarih formatını döndürür.
// Format belirtilmemişse varsayılan "2006-01-02 15:04:05.999999" kullanılır.
func (g *BaseGrammar) DateFormat() string {
	if g.dateFormat == "" {
		return "2006-01-02 15:04:05.999999"
	}
	return g.dateFormat
}

// SingleStatement, metinde ikinci bir ifade olmadığını doğrular.
func (g *BaseGrammar) SingleStatement(sql string) bool {
	return !validation.HasTrailingStatement(sql, g.backslashEscapes)
}

func (g *BaseGrammar) quote(parts []string) string {
	wrapped := make([]string, len(parts))
	for i, p := range parts {
		wrapped[i] = g.quoteOpen + p + g.quoteClose
	}
	return strings.Join(wrapped, ".")
}

// Wrap, kolon adını doğrular ve tırnaklar. "*" olduğu gibi geçer.
func (g *BaseGrammar) Wrap(identifier string) (string, error) {
	if identifier == "*" {
		return "*", nil
	}
	if err := validation.ValidateColumn(identifier); err != nil {
		return "", err
	}
	return g.quote(validation.SplitQualified(identifier)), nil
}

// WrapTable, tablo adını sarar; alias varsa " AS alias" ekler.
func (g *BaseGrammar) WrapTable(table string) (string, error) {
	name, alias, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		return "", err
	}

	wrapped := g.quote(validation.SplitQualified(name))
	if alias != "" {
		wrapped += " AS " + g.quoteOpen + alias + g.quoteClose
	}
	return wrapped, nil
}

// wrapTarget, yazma ifadelerinin hedef tablosunu sarar; alias kabul edilmez.
func (g *BaseGrammar) wrapTarget(table string) (string, error) {
	name, alias, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		return "", err
	}
	if alias != "" {
		return "", &DialectError{Message: "alias on write target " + table, Err: ErrAliasNotAllowed}
	}
	return g.quote(validation.SplitQualified(name)), nil
}

// ----------------------------------------------------------------------------
// Literals
// ----------------------------------------------------------------------------

func (g *BaseGrammar) quoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 3)
	if g.nationalStrings {
		sb.WriteByte('N')
	}
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			sb.WriteString("''")
		case g.backslashEscapes && c == '\\':
			sb.WriteString(`\\`)
		case g.backslashEscapes && c == 0:
			sb.WriteString(`\0`)
		case g.backslashEscapes && c == '\n':
			sb.WriteString(`\n`)
		case g.backslashEscapes && c == '\r':
			sb.WriteString(`\r`)
		case g.backslashEscapes && c == 0x1a:
			sb.WriteString(`\Z`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &DialectError{Message: "non-finite float " + strconv.FormatFloat(f, 'g', -1, 64), Err: ErrUnsupportedValue}
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}

// Literal, bir Go değerini SQL literal'ine çevirir. nil her zaman NULL olur.
func (g *BaseGrammar) Literal(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case Raw:
		return string(v), nil
	case string:
		return g.quoteString(v), nil
	case []byte:
		if v == nil {
			return "NULL", nil
		}
		return g.bytesLiteral(v), nil
	case bool:
		if v {
			return g.boolTrue, nil
		}
		return g.boolFalse, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case time.Time:
		// Saat dilimi taşımayan formatlar için değer UTC'ye çevrilir.
		return g.quoteString(v.UTC().Format(g.DateFormat())), nil
	case decimal.Decimal:
		return v.String(), nil
	case decimal.NullDecimal:
		if !v.Valid {
			return "NULL", nil
		}
		return v.Decimal.String(), nil
	case uuid.UUID:
		return g.quoteString(v.String()), nil
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return "", fmt.Errorf("dialect: value of %T: %w", value, err)
		}
		return g.Literal(dv)
	}

	return g.reflectLiteral(value)
}

// reflectLiteral, isimlendirilmiş tipleri (type Status string gibi) ve pointer'ları çözer.
func (g *BaseGrammar) reflectLiteral(value any) (string, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return g.Literal(rv.Elem().Interface())
	case reflect.String:
		return g.quoteString(rv.String()), nil
	case reflect.Bool:
		return g.Literal(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return "NULL", nil
			}
			return g.bytesLiteral(rv.Bytes()), nil
		}
	}
	return "", &DialectError{Message: fmt.Sprintf("cannot render %T as a literal", value), Err: ErrUnsupportedValue}
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// Bind, koşuldaki '?' yer tutucularını args ile doldurur. args boşsa koşul
// olduğu gibi döner; literal içindeki soru işaretleri yer tutucu sayılmaz.
func (g *BaseGrammar) Bind(condition string, args []any) (string, error) {
	if len(args) == 0 {
		return condition, nil
	}

	positions := validation.Placeholders(condition, g.backslashEscapes)
	if len(positions) != len(args) {
		return "", &DialectError{
			Message: fmt.Sprintf("condition has %d placeholders, got %d arguments", len(positions), len(args)),
			Err:     ErrPlaceholderCount,
		}
	}

	var sb strings.Builder
	last := 0
	for i, p := range positions {
		lit, err := g.Literal(args[i])
		if err != nil {
			return "", err
		}
		sb.WriteString(condition[last:p])
		sb.WriteString(lit)
		last = p + 1
	}
	sb.WriteString(condition[last:])
	return sb.String(), nil
}

// ----------------------------------------------------------------------------
// Compile
// ----------------------------------------------------------------------------

// Compile, Statement'ı SQL metnine derler. Ham metin taşıyan ifadeler
// değiştirilmeden döner.
func (g *BaseGrammar) Compile(s Statement) (string, error) {
	if text := strings.TrimSpace(s.GetText()); text != "" {
		return text, nil
	}
	if strings.TrimSpace(s.GetTable()) == "" {
		return "", ErrNoTable
	}

	switch s.GetKind() {
	case KindSelect:
		return g.compileSelect(s)
	case KindInsert:
		return g.compileInsert(s)
	case KindUpdate:
		return g.compileUpdate(s)
	case KindDelete:
		return g.compileDelete(s)
	}
	return "", &DialectError{Message: "cannot compile " + s.GetKind().String() + " without text", Err: ErrUnknownKind}
}

func (g *BaseGrammar) compileSelect(s Statement) (string, error) {
	table, err := g.WrapTable(s.GetTable())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	limit := s.GetLimit()
	if limit > 0 && g.topLimit {
		sb.WriteString("TOP " + strconv.Itoa(limit) + " ")
	}

	columns := s.GetColumns()
	if len(columns) == 0 {
		sb.WriteString("*")
	} else {
		wrapped := make([]string, len(columns))
		for i, col := range columns {
			if wrapped[i], err = g.Wrap(col); err != nil {
				return "", err
			}
		}
		sb.WriteString(strings.Join(wrapped, ", "))
	}

	sb.WriteString(" FROM ")
	sb.WriteString(table)

	if err := g.writeWhere(&sb, s); err != nil {
		return "", err
	}

	if orders := s.GetOrderColumns(); len(orders) > 0 {
		direction := "ASC"
		if !s.IsAscending() {
			direction = "DESC"
		}
		parts := make([]string, len(orders))
		for i, col := range orders {
			wrapped, err := g.Wrap(col)
			if err != nil {
				return "", err
			}
			parts[i] = wrapped + " " + direction
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if limit > 0 && !g.topLimit {
		sb.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	return sb.String(), nil
}

func (g *BaseGrammar) compileInsert(s Statement) (string, error) {
	table, err := g.wrapTarget(s.GetTable())
	if err != nil {
		return "", err
	}

	assignments := s.GetAssignments()
	if len(assignments) == 0 {
		return "", ErrNoAssignments
	}

	columns := make([]string, len(assignments))
	values := make([]string, len(assignments))
	for i, a := range assignments {
		if columns[i], err = g.Wrap(a.Column); err != nil {
			return "", err
		}
		if values[i], err = g.Literal(a.Value); err != nil {
			return "", err
		}
	}

	return "INSERT INTO " + table +
		" (" + strings.Join(columns, ", ") + ")" +
		" VALUES (" + strings.Join(values, ", ") + ")", nil
}

func (g *BaseGrammar) compileUpdate(s Statement) (string, error) {
	table, err := g.wrapTarget(s.GetTable())
	if err != nil {
		return "", err
	}

	assignments := s.GetAssignments()
	if len(assignments) == 0 {
		return "", ErrNoAssignments
	}

	sets := make([]string, len(assignments))
	for i, a := range assignments {
		col, err := g.Wrap(a.Column)
		if err != nil {
			return "", err
		}
		val, err := g.Literal(a.Value)
		if err != nil {
			return "", err
		}
		sets[i] = col + " = " + val
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))
	if err := g.writeWhere(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *BaseGrammar) compileDelete(s Statement) (string, error) {
	table, err := g.wrapTarget(s.GetTable())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	if err := g.writeWhere(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeWhere, boş olmayan koşulu " WHERE ..." olarak ekler.
func (g *BaseGrammar) writeWhere(sb *strings.Builder, s Statement) error {
	condition := validation.TrimWhereKeyword(s.GetCondition())
	bindings := s.GetBindings()
	if condition == "" {
		if len(bindings) > 0 {
			return &DialectError{Message: "arguments given without a condition", Err: ErrPlaceholderCount}
		}
		return nil
	}

	bound, err := g.Bind(condition, bindings)
	if err != nil {
		return err
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(bound)
	return nil
}
