package dialect

import "strings"

// DuckDBGrammar, gömülü DuckDB için Grammar implementasyonudur.
type DuckDBGrammar struct {
	BaseGrammar
}

var _ Grammar = (*DuckDBGrammar)(nil)

// NewDuckDBGrammar, yeni bir DuckDB grameri oluşturur.
func NewDuckDBGrammar() *DuckDBGrammar {
	return &DuckDBGrammar{
		BaseGrammar: BaseGrammar{
			name:       "duckdb",
			dateFormat: "2006-01-02 15:04:05.999999Z07:00",
			quoteOpen:  `"`,
			quoteClose: `"`,
			boolTrue:   "TRUE",
			boolFalse:  "FALSE",
			bytesLiteral: func(b []byte) string {
				// BLOB literal'i bayt başına \xNN kaçışı bekler.
				var sb strings.Builder
				sb.WriteByte('\'')
				for _, c := range b {
					sb.WriteString(`\x`)
					sb.WriteString(hexUpper([]byte{c}))
				}
				sb.WriteString("'::BLOB")
				return sb.String()
			},
		},
	}
}

// DuckDB, NewDuckDBGrammar için kısa yoldur.
func DuckDB() *DuckDBGrammar {
	return NewDuckDBGrammar()
}
