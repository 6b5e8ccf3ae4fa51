package dialect

// SQLServerGrammar, Microsoft SQL Server için Grammar implementasyonudur.
// Identifier'lar köşeli parantezle sarılır, stringler N'...' biçimindedir,
// selectFirst LIMIT yerine TOP 1 ile derlenir.
type SQLServerGrammar struct {
	BaseGrammar
}

var _ Grammar = (*SQLServerGrammar)(nil)

// NewSQLServerGrammar, yeni bir SQL Server grameri oluşturur.
func NewSQLServerGrammar() *SQLServerGrammar {
	return &SQLServerGrammar{
		BaseGrammar: BaseGrammar{
			name:            "sqlserver",
			dateFormat:      "2006-01-02T15:04:05.999",
			quoteOpen:       "[",
			quoteClose:      "]",
			topLimit:        true,
			nationalStrings: true,
			boolTrue:        "1",
			boolFalse:       "0",
			bytesLiteral: func(b []byte) string {
				return "0x" + hexUpper(b)
			},
		},
	}
}

// SQLServer, NewSQLServerGrammar için kısa yoldur.
func SQLServer() *SQLServerGrammar {
	return NewSQLServerGrammar()
}
