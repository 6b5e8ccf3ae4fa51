package validation

import "strings"

// Token, maskelenmiş SQL metnindeki tek bir kelimedir.
type Token struct {
	Word  string // büyük harfe çevrilmiş kelime
	Depth int    // parantez derinliği
	Pos   int    // orijinal metindeki bayt konumu
}

// Mask, SQL metnindeki yorumları, string literal'leri ve tırnaklı identifier'ları
// boşlukla değiştirir. Dönen metin girdiyle aynı uzunluktadır; konumlar korunur.
//
// backslashEscapes true ise '...' içinde ters bölü bir sonraki karakteri kaçırır (MySQL).
// Kapanmamış literal veya yorum metnin sonuna kadar maskelenir.
func Mask(sql string, backslashEscapes bool) string {
	out := []byte(sql)
	blank := func(from, to int) {
		for k := from; k < to && k < len(out); k++ {
			out[k] = ' '
		}
	}

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				j = len(sql) - i
			}
			blank(i, i+j)
			i += j
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			end := len(sql)
			if j >= 0 {
				end = i + 2 + j + 2
			}
			blank(i, end)
			i = end
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(sql, i, c, backslashEscapes && c == '\'')
			blank(i, end)
			i = end
		case c == '$' && (i == 0 || !isWordPart(sql[i-1])):
			end, ok := skipDollarQuoted(sql, i)
			if !ok {
				i++
				continue
			}
			blank(i, end)
			i = end
		default:
			i++
		}
	}
	return string(out)
}

func skipQuoted(s string, start int, q byte, backslash bool) int {
	for j := start + 1; j < len(s); j++ {
		switch {
		case backslash && s[j] == '\\':
			j++
		case s[j] == q:
			if j+1 < len(s) && s[j+1] == q {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// skipDollarQuoted, PostgreSQL $tag$...$tag$ gövdesinin sonunu döndürür.
// $1 gibi parametreler gövde sayılmaz.
func skipDollarQuoted(s string, start int) (int, bool) {
	j := start + 1
	for j < len(s) && (isWordStart(s[j]) || (j > start+1 && s[j] >= '0' && s[j] <= '9')) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return 0, false
	}
	tag := s[start : j+1]
	k := strings.Index(s[j+1:], tag)
	if k < 0 {
		return len(s), true
	}
	return j + 1 + k + len(tag), true
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9') || c == '$'
}

// Tokenize, yorum ve literal'lerden arındırılmış metindeki kelimeleri
// parantez derinlikleriyle birlikte döndürür. Sayılar kelime sayılmaz.
func Tokenize(sql string) []Token {
	masked := maskBrackets(Mask(sql, true))

	var tokens []Token
	depth := 0
	for i := 0; i < len(masked); {
		c := masked[i]
		switch {
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isWordStart(c):
			j := i + 1
			for j < len(masked) && isWordPart(masked[j]) {
				j++
			}
			tokens = append(tokens, Token{Word: strings.ToUpper(masked[i:j]), Depth: depth, Pos: i})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(masked) && (isWordPart(masked[j]) || masked[j] == '.') {
				j++
			}
			i = j
		default:
			i++
		}
	}
	return tokens
}

// maskBrackets, SQL Server [identifier] ve dizi indekslerini boşlukla değiştirir.
func maskBrackets(masked string) string {
	i := strings.IndexByte(masked, '[')
	if i < 0 {
		return masked
	}
	out := []byte(masked)
	for i < len(out) {
		if out[i] != '[' {
			i++
			continue
		}
		j := i
		for j < len(out) && out[j] != ']' {
			out[j] = ' '
			j++
		}
		if j < len(out) {
			out[j] = ' '
		}
		i = j + 1
	}
	return string(out)
}

// LeadingKeyword, metindeki ilk anlamlı kelimeyi büyük harfle döndürür.
// Baştaki parantezler ve yorumlar atlanır; kelime yoksa "" döner.
func LeadingKeyword(sql string) string {
	tokens := Tokenize(sql)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0].Word
}

// FirstTopLevel, WITH ile başlayan bir ifadede CTE listesinden sonra gelen
// ilk üst düzey (derinlik 0) anahtar kelimeyi arar. candidates büyük harfle verilmelidir.
func FirstTopLevel(sql string, candidates ...string) string {
	for _, t := range Tokenize(sql) {
		if t.Depth != 0 {
			continue
		}
		for _, c := range candidates {
			if t.Word == c {
				return c
			}
		}
	}
	return ""
}

// ModifyingCTE, WITH listesinde gövdesi INSERT, UPDATE, DELETE veya MERGE ile
// başlayan ilk CTE'nin anahtar kelimesini döndürür; yoksa "".
//
//	WITH d AS (DELETE FROM users RETURNING *) SELECT * FROM d  // "DELETE"
func ModifyingCTE(sql string) string {
	tokens := Tokenize(sql)
	for i := 1; i < len(tokens); i++ {
		prev, t := tokens[i-1], tokens[i]
		if t.Depth <= prev.Depth || (prev.Word != "AS" && prev.Word != "MATERIALIZED") {
			continue
		}
		switch t.Word {
		case "INSERT", "UPDATE", "DELETE", "MERGE":
			return t.Word
		}
	}
	return ""
}

var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "INTO": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true, "GRANT": true, "REVOKE": true,
}

// TopLevelWrite, bir okuma ifadesinin üst düzeyinde (derinlik 0) ilk kelimeden sonra gelen
// veri ya da şema değiştiren anahtar kelimeyi döndürür; yoksa "".
// Ayraçsız T-SQL toplu ifadeleri, SELECT ... INTO ve EXPLAIN ANALYZE DELETE bu yolla yakalanır.
// FOR UPDATE ve FOR NO KEY UPDATE kilitleri sayılmaz.
func TopLevelWrite(sql string) string {
	tokens := Tokenize(sql)
	for i := 1; i < len(tokens); i++ {
		t := tokens[i]
		if t.Depth != 0 || !writeKeywords[t.Word] {
			continue
		}
		if t.Word == "UPDATE" && (tokens[i-1].Word == "FOR" || tokens[i-1].Word == "KEY") {
			continue
		}
		return t.Word
	}
	return ""
}

// HasTrailingStatement, metinde ';' ile ayrılmış ikinci bir ifade olup olmadığını söyler.
// Literal ve yorumların içindeki ';' sayılmaz; sondaki ';' ve boşluklar serbesttir.
func HasTrailingStatement(sql string, backslashEscapes bool) bool {
	masked := Mask(sql, backslashEscapes)
	i := strings.IndexByte(masked, ';')
	if i < 0 {
		return false
	}
	return strings.TrimLeft(masked[i:], "; \t\r\n") != ""
}

// Placeholders, literal ve yorumların dışında kalan '?' karakterlerinin konumlarını döndürür.
func Placeholders(condition string, backslashEscapes bool) []int {
	masked := Mask(condition, backslashEscapes)
	var pos []int
	for i := 0; i < len(masked); i++ {
		if masked[i] == '?' {
			pos = append(pos, i)
		}
	}
	return pos
}

// TrimWhereKeyword, koşul metninin başındaki isteğe bağlı "WHERE" kelimesini
// ve çevresindeki boşlukları atar. Yalnızca boşluktan oluşan koşul "" olur.
func TrimWhereKeyword(condition string) string {
	t := strings.TrimSpace(condition)
	if len(t) >= 5 && strings.EqualFold(t[:5], "WHERE") {
		if len(t) == 5 {
			return ""
		}
		if next := t[5]; next == ' ' || next == '\t' || next == '\n' || next == '\r' || next == '(' {
			return strings.TrimSpace(t[5:])
		}
	}
	return t
}
