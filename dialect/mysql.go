package dialect

// MySQLGrammar, MySQL/MariaDB için Grammar implementasyonudur.
// Identifier'lar backtick ile sarılır; string literal'lerde ters bölü kaçış karakteridir.
type MySQLGrammar struct {
	BaseGrammar
}

var _ Grammar = (*MySQLGrammar)(nil)

// NewMySQLGrammar, yeni bir MySQL grameri oluşturur.
func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{
		BaseGrammar: BaseGrammar{
			name:             "mysql",
			dateFormat:       "2006-01-02 15:04:05.999999",
			quoteOpen:        "`",
			quoteClose:       "`",
			backslashEscapes: true,
			boolTrue:         "TRUE",
			boolFalse:        "FALSE",
			bytesLiteral: func(b []byte) string {
				return "X'" + hexUpper(b) + "'"
			},
		},
	}
}

// MySQL, NewMySQLGrammar için kısa yoldur.
func MySQL() *MySQLGrammar {
	return NewMySQLGrammar()
}
