// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package recordsql

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/biyonik/go-record-sql/dialect"
)

// Version, go-record-sql kütüphanesinin mevcut sürümünü belirtir.
const Version = "0.2.0"

// Open, Config'ten bir DB kurar ve verilen kimlikle bağlanır. Gramer sürücü
// adından seçilir; Cache.Addr doluysa Redis önbelleği eklenir. opts, Config'ten
// gelen ayarlardan sonra uygulanır ve onları ezebilir.
//
// Örnek:
//
//	cfg, err := recordsql.LoadConfigFile("recordsql.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db, err := recordsql.Open(ctx, cfg, recordsql.WithLogger(recordsql.NewLogrLogger(logger)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
func Open(ctx context.Context, cfg *Config, opts ...Option) (*DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grammar, err := dialect.ForDriver(cfg.Driver)
	if err != nil {
		return nil, invalidArgument("open", err)
	}

	base := []Option{
		WithGrammar(grammar),
		WithDebug(cfg.Debug),
		WithTimeout(cfg.Timeout),
		WithTablePrefix(cfg.TablePrefix),
	}

	var client *redis.Client
	if cfg.Cache.Addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		base = append(base, WithCache(NewRedisCache(client, cfg.Cache.Prefix, cfg.Cache.TTL)))
	}

	dialer := NewSQLDialer(cfg.Driver, cfg.Params, cfg.ConnectTimeout, nil)
	db := New(dialer, append(base, opts...)...)
	if client != nil {
		db.closers = append(db.closers, client)
	}

	if err := db.Connect(ctx, cfg.Identity); err != nil {
		if client != nil {
			client.Close()
		}
		return nil, err
	}
	return db, nil
}
