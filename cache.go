package recordsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// Cache, yapılandırılmış SELECT sorgularının ham satırlarını saklayan isteğe bağlı önbellektir.
// Kayıtlar tablo adıyla etiketlenir; o tabloya yapılan her başarılı yazma etiketi temizler.
// Ham (RawQuery) yazmalar tablonun bilinmemesi nedeniyle bütün önbelleği temizler.
//
// Etiket alias ve şema atılmış tablo adıdır. Koşulunda alt sorgu bulunan okumalar
// önbelleğe alınmaz. Okuma sürerken aynı DB üzerinden tabloya yazma başlarsa sonuç
// önbelleğe yazılmaz; başka süreçlerin veya bu kütüphaneyi kullanmayan istemcilerin
// yazmaları ise ancak TTL dolduğunda görünür.
type Cache interface {
	Get(ctx context.Context, key string) ([]Row, bool, error)
	Set(ctx context.Context, key, table string, rows []Row) error
	// Invalidate, table boşsa bütün kayıtları siler.
	Invalidate(ctx context.Context, table string) error
}

// CacheKey, gramer adı ve SQL metninden kısa ve kararlı bir anahtar üretir.
func CacheKey(dialectName, sql string) string {
	return strconv.FormatUint(xxhash.Sum64String(dialectName+"\x00"+sql), 16)
}

// errUncacheable, kodlanamayan sürücüye özgü bir değer içeren satırlar için döner.
var errUncacheable = errors.New("recordsql: rows contain values that cannot be cached")

// RedisCache, Cache arayüzünü go-redis üzerinde uygular.
//
//	<prefix>q:<key>    → JSON kodlanmış satırlar (TTL ile)
//	<prefix>t:<table>  → o tabloya ait anahtar kümesi
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache, verilen istemciyle bir RedisCache oluşturur. ttl sıfırsa kayıtlar süresizdir.
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) queryKey(key string) string   { return c.prefix + "q:" + key }
func (c *RedisCache) tableKey(table string) string { return c.prefix + "t:" + table }

// Get, anahtara ait satırları döndürür. Kayıt yoksa ok false olur.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Row, bool, error) {
	data, err := c.client.Get(ctx, c.queryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// Set, satırları saklar ve anahtarı tablo kümesine ekler.
// Kodlanamayan değer içeren satırlar sessizce atlanır.
func (c *RedisCache) Set(ctx context.Context, key, table string, rows []Row) error {
	data, err := encodeRows(rows)
	if errors.Is(err, errUncacheable) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.queryKey(key), data, c.ttl)
		pipe.SAdd(ctx, c.tableKey(table), key)
		if c.ttl > 0 {
			pipe.Expire(ctx, c.tableKey(table), c.ttl)
		}
		return nil
	})
	return err
}

// Invalidate, tabloya ait kayıtları siler; table boşsa önek altındaki her şeyi siler.
func (c *RedisCache) Invalidate(ctx context.Context, table string) error {
	if table == "" {
		return c.flush(ctx)
	}

	keys, err := c.client.SMembers(ctx, c.tableKey(table)).Result()
	if err != nil {
		return err
	}
	doomed := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		doomed = append(doomed, c.queryKey(k))
	}
	doomed = append(doomed, c.tableKey(table))
	return c.client.Del(ctx, doomed...).Err()
}

func (c *RedisCache) flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 256).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// ----------------------------------------------------------------------------
// Row codec
// ----------------------------------------------------------------------------

// cachedValue, Field.Value'nun tip bilgisini koruyarak JSON'a yazılan biçimidir.
type cachedValue struct {
	K string    `json:"k"` // n, b, s, i, u, f, y, T
	B []byte    `json:"b,omitempty"`
	S string    `json:"s,omitempty"`
	I int64     `json:"i,omitempty"`
	U uint64    `json:"u,omitempty"`
	F float64   `json:"f,omitempty"`
	T time.Time `json:"T,omitempty"`
	Y bool      `json:"y,omitempty"`
}

type cachedField struct {
	Name         string      `json:"n"`
	Nullable     bool        `json:"null"`
	DatabaseType string      `json:"db"`
	Type         ColumnType  `json:"t"`
	Value        cachedValue `json:"v"`
}

func encodeValue(v any) (cachedValue, error) {
	switch x := v.(type) {
	case nil:
		return cachedValue{K: "n"}, nil
	case []byte:
		return cachedValue{K: "b", B: x}, nil
	case string:
		return cachedValue{K: "s", S: x}, nil
	case int64:
		return cachedValue{K: "i", I: x}, nil
	case int32:
		return cachedValue{K: "i", I: int64(x)}, nil
	case int:
		return cachedValue{K: "i", I: int64(x)}, nil
	case uint64:
		return cachedValue{K: "u", U: x}, nil
	case float64:
		return cachedValue{K: "f", F: x}, nil
	case float32:
		return cachedValue{K: "f", F: float64(x)}, nil
	case bool:
		return cachedValue{K: "y", Y: x}, nil
	case time.Time:
		return cachedValue{K: "T", T: x}, nil
	}
	return cachedValue{}, fmt.Errorf("%w: %T", errUncacheable, v)
}

func (cv cachedValue) decode() (any, error) {
	switch cv.K {
	case "n":
		return nil, nil
	case "b":
		if cv.B == nil {
			return []byte{}, nil
		}
		return cv.B, nil
	case "s":
		return cv.S, nil
	case "i":
		return cv.I, nil
	case "u":
		return cv.U, nil
	case "f":
		return cv.F, nil
	case "y":
		return cv.Y, nil
	case "T":
		return cv.T, nil
	}
	return nil, fmt.Errorf("recordsql: unknown cached value kind %q", cv.K)
}

func encodeRows(rows []Row) ([]byte, error) {
	out := make([][]cachedField, len(rows))
	for i, row := range rows {
		fields := make([]cachedField, len(row))
		for j, f := range row {
			v, err := encodeValue(f.Value)
			if err != nil {
				return nil, err
			}
			fields[j] = cachedField{
				Name:         f.Name,
				Nullable:     f.Nullable,
				DatabaseType: f.DatabaseType,
				Type:         f.Type,
				Value:        v,
			}
		}
		out[i] = fields
	}
	return json.Marshal(out)
}

func decodeRows(data []byte) ([]Row, error) {
	var in [][]cachedField
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	rows := make([]Row, len(in))
	for i, fields := range in {
		row := make(Row, len(fields))
		for j, cf := range fields {
			v, err := cf.Value.decode()
			if err != nil {
				return nil, err
			}
			row[j] = Field{
				Name:         cf.Name,
				Value:        v,
				Nullable:     cf.Nullable,
				DatabaseType: cf.DatabaseType,
				Type:         cf.Type,
			}
		}
		rows[i] = row
	}
	return rows, nil
}
