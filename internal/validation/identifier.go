// Package validation, SQL metnine giren tablo, kolon ve alias isimlerini doğrulayan
// ve ham SQL metnini anahtar kelime düzeyinde tarayan dahili yardımcıları içerir.
//
// Doğrulamalar şu sorulara cevap verir:
// 1. Bu isim geçerli bir SQL identifier mı? (harf, rakam, alt çizgi, en fazla bir nokta)
// 2. Alias kullanılmışsa alias da geçerli mi?
// 3. Liste halinde gelen kolonların her biri geçerli mi, boş eleman var mı?
//
// Başarısız doğrulamalar her zaman `*IdentifierError` döndürür.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxIdentifierLength, kabul edilen en uzun identifier uzunluğudur.
const MaxIdentifierLength = 128

// identifierRegex: "name" veya "schema.name".
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// aliasRegex, "table alias" ve "table AS alias" biçimlerini yakalar.
var aliasRegex = regexp.MustCompile(`(?i)^([a-zA-Z_][a-zA-Z0-9_.]*)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)

// IdentifierError, identifier doğrulama hatasını temsil eder.
type IdentifierError struct {
	Identifier string
	Role       string // "table", "column", "alias"
	Reason     string
}

// Error, error arayüzünü uygular.
func (e *IdentifierError) Error() string {
	role := e.Role
	if role == "" {
		role = "identifier"
	}
	if e.Identifier == "" {
		return "recordsql: invalid " + role + ": " + e.Reason
	}
	return "recordsql: invalid " + role + " '" + e.Identifier + "': " + e.Reason
}

func check(id, role string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return &IdentifierError{Identifier: id, Role: role, Reason: "name cannot be empty"}
	case len(id) > MaxIdentifierLength:
		return &IdentifierError{
			Identifier: id,
			Role:       role,
			Reason:     "name exceeds maximum length of " + strconv.Itoa(MaxIdentifierLength) + " characters",
		}
	case !identifierRegex.MatchString(id):
		return &IdentifierError{
			Identifier: id,
			Role:       role,
			Reason:     "only letters, digits, underscores and a single dot are allowed",
		}
	}
	return nil
}

// ValidateIdentifier, tek bir identifier'ı doğrular.
func ValidateIdentifier(id string) error {
	return check(id, "")
}

// ValidateColumn, "column" veya "table.column" referansını doğrular.
func ValidateColumn(column string) error {
	return check(column, "column")
}

// ValidateColumns, bir kolon listesini sırayla doğrular; ilk hatada durur.
// Boş liste geçerlidir, listedeki boş eleman geçerli değildir.
func ValidateColumns(columns []string) error {
	for i, c := range columns {
		if err := check(c, "column"); err != nil {
			ie := err.(*IdentifierError)
			ie.Reason = "position " + strconv.Itoa(i) + ": " + ie.Reason
			return ie
		}
	}
	return nil
}

// ValidateTableWithAlias, tablo referansını (alias'lı olabilir) doğrular.
// Desteklenen biçimler: "table", "schema.table", "table alias", "table AS alias".
func ValidateTableWithAlias(table string) (name, alias string, err error) {
	table = strings.TrimSpace(table)
	if m := aliasRegex.FindStringSubmatch(table); m != nil {
		if err := check(m[1], "table"); err != nil {
			return "", "", err
		}
		if err := check(m[2], "alias"); err != nil {
			return "", "", err
		}
		return m[1], m[2], nil
	}

	if err := check(table, "table"); err != nil {
		return "", "", err
	}
	return table, "", nil
}

// SplitQualified, "schema.name" referansını parçalarına ayırır.
// Nokta yoksa tek elemanlı dilim döner.
func SplitQualified(ref string) []string {
	return strings.Split(ref, ".")
}
