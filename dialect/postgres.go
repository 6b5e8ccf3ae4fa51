package dialect

// PostgresGrammar, PostgreSQL için Grammar implementasyonudur.
// Hem lib/pq ("postgres") hem pgx ("pgx") sürücüleriyle kullanılır.
// standard_conforming_strings açık kabul edilir; ters bölü kaçış karakteri değildir.
type PostgresGrammar struct {
	BaseGrammar
}

var _ Grammar = (*PostgresGrammar)(nil)

// NewPostgresGrammar, yeni bir PostgreSQL grameri oluşturur.
func NewPostgresGrammar() *PostgresGrammar {
	return &PostgresGrammar{
		BaseGrammar: BaseGrammar{
			name:       "postgres",
			dateFormat: "2006-01-02 15:04:05.999999Z07:00",
			quoteOpen:  `"`,
			quoteClose: `"`,
			boolTrue:   "TRUE",
			boolFalse:  "FALSE",
			bytesLiteral: func(b []byte) string {
				return `'\x` + hexUpper(b) + `'::bytea`
			},
		},
	}
}

// Postgres, NewPostgresGrammar için kısa yoldur.
func Postgres() *PostgresGrammar {
	return NewPostgresGrammar()
}
