package recordsql

import (
	"database/sql"
	"sync"
)

//
// =====================================================================================
// 📚 RECORDSQL – SCANNER BİRİMİ
// -------------------------------------------------------------------------------------
// Bu dosya, database/sql sonuç kümesini motorun bildirdiği sırayla ham Row'lara
// aktaran *Scanner* altyapısını içerir. Burada tip dönüşümü yapılmaz; her kolon
// için ham değer, kolon adı, nullable bilgisi ve veritabanı tip adı toplanır.
// Dönüşüm işi Serializer'ındır.
//
// Çalışma biçimi:
//   1. rows.ColumnTypes() ile kolon metadata'sı okunur
//   2. Tip adları ColumnType sınıfına çevrilir (sonuç cache'e alınır)
//   3. Her satır *any hedeflerine taranır; NULL → nil
//   4. Sürücünün bildiremediği nullable bilgisi "nullable" kabul edilir
//
// YAZAR BİLGİSİ
// @author    Ahmet ALTUN
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik
// @email     ahmet.altun60@gmail.com
// =====================================================================================
//

// Scanner, bir sonuç kümesini ham satırlara çeviren sözleşmedir.
type Scanner interface {
	// ScanRows, rows'u sonuna kadar okur ve kapatır.
	ScanRows(rows *sql.Rows) ([]Row, error)
}

// DefaultScanner, kütüphanenin standart tarayıcısıdır.
// Tip adı → ColumnType eşlemesi cache'de tutulur.
type DefaultScanner struct {
	cache sync.Map // string → ColumnType
}

// NewDefaultScanner, varsayılan scanner'ı oluşturur.
func NewDefaultScanner() *DefaultScanner {
	return &DefaultScanner{}
}

// column, bir kolonun tarama sırasında kullanılan metadata'sıdır.
type column struct {
	name         string
	databaseType string
	typ          ColumnType
	nullable     bool
}

func (s *DefaultScanner) classify(databaseType string) ColumnType {
	if t, ok := s.cache.Load(databaseType); ok {
		return t.(ColumnType)
	}
	t := ClassifyColumn(databaseType)
	s.cache.Store(databaseType, t)
	return t
}

func (s *DefaultScanner) columns(rows *sql.Rows) ([]column, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	cols := make([]column, len(types))
	for i, ct := range types {
		nullable, ok := ct.Nullable()
		if !ok {
			nullable = true
		}
		cols[i] = column{
			name:         ct.Name(),
			databaseType: ct.DatabaseTypeName(),
			typ:          s.classify(ct.DatabaseTypeName()),
			nullable:     nullable,
		}
	}
	return cols, nil
}

// ScanRows, tüm satırları okur. Satır yoksa boş (nil olmayan) dilim döner.
func (s *DefaultScanner) ScanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	cols, err := s.columns(rows)
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			row[i] = Field{
				Name:         c.name,
				Value:        values[i],
				Nullable:     c.nullable,
				DatabaseType: c.databaseType,
				Type:         c.typ,
			}
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
