package recordsql

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/biyonik/go-record-sql/dialect"
)

// ----------------------------------------------------------------------------
// Identity
// ----------------------------------------------------------------------------

// Identity, bir oturumun kimlik bilgilerini ve hedef sunucusunu taşır.
// Socket doluysa Host/Port yerine unix soket kullanılır (MySQL, PostgreSQL).
type Identity struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Socket   string `yaml:"socket"`
}

// String, parolayı göstermeden kimliği "user@host:port/db" biçiminde yazar.
func (id Identity) String() string {
	s := id.User + "@"
	if id.Socket != "" {
		s += id.Socket
	} else {
		s += id.Host
		if id.Port > 0 {
			s += ":" + itoa(id.Port)
		}
	}
	return s + "/" + id.Database
}

// ----------------------------------------------------------------------------
// Results
// ----------------------------------------------------------------------------

// ExecResult, bir yazma işleminin (INSERT/UPDATE/DELETE) sonucudur.
// Başarılı işlemde Code, CodeSuccess (sıfır) olur.
type ExecResult struct {
	Code         ErrorCode
	RowsAffected int64
	LastInsertID int64
}

// OK, işlemin başarılı olup olmadığını döndürür.
func (r ExecResult) OK() bool {
	return r.Code == CodeSuccess
}

// Result, ExecuteQuery'nin tek sonuç tipidir: okuma ifadelerinde Records,
// diğer ifadelerde Exec dolu olur; ikisi birden asla dolu olmaz.
type Result struct {
	Kind    dialect.Kind
	Records []Record
	Exec    *ExecResult
}

// IsRead, sonucun satır taşıyıp taşımadığını döndürür.
func (r *Result) IsRead() bool {
	return r.Exec == nil
}

// itoa, strconv'a gerek duymadan küçük tamsayıları yazıya çevirir.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// ----------------------------------------------------------------------------
// Logger Interface
// ----------------------------------------------------------------------------

// Logger, çalışan SQL sorgularını, sürelerini ve hatalarını izlemek için kullanılır.
// Oturum olayları (bağlanma, kapanma) da aynı arayüzden, sorgu yerine
// "CONNECT"/"CLOSE" etiketiyle geçer.
type Logger interface {
	Log(query string, duration time.Duration, err error)
}

// NopLogger tüm kayıtları yutar; logger verilmediğinde kullanılır.
type NopLogger struct{}

// Log, hiçbir şey yapmaz.
func (NopLogger) Log(string, time.Duration, error) {}

// LogrLogger, Logger arayüzünü bir logr.Logger üzerine oturtur.
// Başarılı sorgular V(1) seviyesinde, hatalar Error ile yazılır.
type LogrLogger struct {
	log logr.Logger
}

// NewLogrLogger, verilen logr.Logger'ı Logger olarak sarar.
func NewLogrLogger(l logr.Logger) *LogrLogger {
	return &LogrLogger{log: l.WithName("recordsql")}
}

// Log, sorgu kaydını logr'a aktarır.
func (l *LogrLogger) Log(query string, duration time.Duration, err error) {
	if err != nil {
		l.log.Error(err, "query failed", "query", query, "duration", duration, "code", CodeOf(err).String())
		return
	}
	l.log.V(1).Info("query executed", "query", query, "duration", duration)
}
