package recordsql

import (
	"strings"

	// pgx, "pgx" adıyla kayıtlı database/sql sürücüsünü sağlar.
	// mysql, pq ve mssql sürücüleri classify.go'daki importlarla kaydolur.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// driverAliases, Config'te kabul edilen takma adları database/sql'de kayıtlı sürücü adlarına çevirir.
var driverAliases = map[string]string{
	"mariadb":    "mysql",
	"postgresql": "postgres",
	"azuresql":   "sqlserver",
}

func sqlDriverName(driver string) string {
	d := strings.ToLower(driver)
	if name, ok := driverAliases[d]; ok {
		return name
	}
	return d
}
