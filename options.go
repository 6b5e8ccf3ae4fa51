package recordsql

import (
	"time"

	"github.com/biyonik/go-record-sql/dialect"
)

// -----------------------------------------------------------------------------
//  Bu dosya; DB yapısının davranışını dışarıdan şekillendiren *Option*
//  fonksiyonlarını içerir. Her With* fonksiyonu New veya Open çağrısına
//  eklenen küçük bir yapılandırma adımıdır; sıralarıyla uygulanırlar.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Option, bir *DB* örneği üzerinde çalışan yapılandırma fonksiyonudur.
type Option func(*DB)

// WithGrammar, sorguların derleneceği SQL gramerini belirler.
// Varsayılan MySQL'dir; Open sürücü adından grameri kendisi seçer.
//
// Örnek:
//
//	db := recordsql.New(dialer, recordsql.WithGrammar(dialect.Postgres()))
func WithGrammar(g dialect.Grammar) Option {
	return func(d *DB) {
		d.grammar = g
	}
}

// WithLogger, sorgu ve oturum kayıtlarının yazılacağı Logger'ı belirler.
//
// Örnek:
//
//	db := recordsql.New(dialer,
//	    recordsql.WithDebug(true),
//	    recordsql.WithLogger(recordsql.NewLogrLogger(log)),
//	)
func WithLogger(logger Logger) Option {
	return func(d *DB) {
		d.logger = logger
	}
}

// WithDebug, açıkken başarılı sorguları da loglar. Kapalıyken yalnızca hatalar loglanır.
func WithDebug(enabled bool) Option {
	return func(d *DB) {
		d.debug = enabled
	}
}

// WithTimeout, her sorgu çağrısına uygulanan üst süre sınırıdır.
// Süre dolarsa çağrı Timeout hatasıyla döner. Sıfır sınır yok demektir.
func WithTimeout(timeout time.Duration) Option {
	return func(d *DB) {
		d.timeout = timeout
	}
}

// WithSerializer, satırları kayıtlara çeviren Serializer'ı belirler
// (örneğin kolon bazlı NULL varsayılanları için).
func WithSerializer(s *Serializer) Option {
	return func(d *DB) {
		d.serializer = s
	}
}

// WithCache, yapılandırılmış SELECT sonuçları için önbellek ekler.
func WithCache(c Cache) Option {
	return func(d *DB) {
		d.cache = c
	}
}

// WithTablePrefix, yapılandırılmış sorgulardaki tablo adlarına önek ekler.
// Ham sorgulara dokunulmaz.
//
//	db := recordsql.New(dialer, recordsql.WithTablePrefix("app_"))
//	// db.SelectAll(ctx, "users")  →  `app_users`
func WithTablePrefix(prefix string) Option {
	return func(d *DB) {
		d.prefix = prefix
	}
}

// applyOptions, nil olmayan her Option'ı sırayla uygular.
func applyOptions(d *DB, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
}
