package recordsql

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/biyonik/go-record-sql/dialect"
)

// DB, kütüphanenin çağıran tarafa bakan yüzüdür: oturumu, yürütücüyü,
// grameri, serileştiriciyi ve isteğe bağlı önbelleği bir araya getirir.
// Her metod context alır ve birden fazla goroutine tarafından güvenle kullanılabilir;
// oturum üzerindeki ifadeler sırayla çalışır.
type DB struct {
	session    *Session
	executor   *Executor
	grammar    dialect.Grammar
	serializer *Serializer
	cache      Cache
	logger     Logger
	debug      bool
	timeout    time.Duration
	prefix     string

	// Yazmalar sırasında artan sayaçlar; okuma boyunca değişen tablonun
	// sonucu önbelleğe yazılmaz. flushes ham yazmaları sayar.
	cacheMu sync.Mutex
	flushes uint64
	writes  map[string]uint64

	closers []io.Closer
}

// New, verilen Dialer ile bağlı olmayan bir DB oluşturur. Sorgulardan önce
// Connect çağrılmalıdır.
func New(d Dialer, opts ...Option) *DB {
	db := &DB{logger: NopLogger{}}
	applyOptions(db, opts)

	if db.grammar == nil {
		db.grammar = dialect.NewMySQLGrammar()
	}
	if db.serializer == nil {
		db.serializer = NewSerializer()
	}
	if db.logger == nil {
		db.logger = NopLogger{}
	}

	db.session = NewSession(d, db.logger)
	db.executor = &Executor{
		conn:    db.session,
		grammar: db.grammar,
		logger:  db.logger,
		debug:   db.debug,
		timeout: db.timeout,
	}
	return db
}

// Connect, oturumu verilen kimlikle açar.
func (db *DB) Connect(ctx context.Context, id Identity) error {
	return db.session.Connect(ctx, id)
}

// IsConnected, oturumun bağlı olup olmadığını döndürür.
func (db *DB) IsConnected() bool {
	return db.session.IsConnected()
}

// Identity, oturumun kimliğini döndürür.
func (db *DB) Identity() Identity {
	return db.session.Identity()
}

// Grammar, aktif SQL gramerini döndürür.
func (db *DB) Grammar() dialect.Grammar {
	return db.grammar
}

// Executor, alttaki yürütücüyü döndürür (ham satırlara ihtiyaç duyanlar için).
func (db *DB) Executor() *Executor {
	return db.executor
}

// Close, oturumu ve Open tarafından açılan yardımcı kaynakları kapatır.
func (db *DB) Close() error {
	errs := []error{db.session.Close()}
	for _, c := range db.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// ----------------------------------------------------------------------------
// Generic entry points
// ----------------------------------------------------------------------------

// Select, bir okuma sorgusunu çalıştırır ve kayıtları döndürür.
// Yapılandırılmış sorgular önbellek varsa önce önbellekte aranır.
func (db *DB) Select(ctx context.Context, q *Query) ([]Record, error) {
	if !db.IsConnected() {
		return nil, &Error{Code: CodeNotConnected, Op: "select", Err: errors.New("connect must succeed before queries")}
	}
	q = q.withPrefix(db.prefix)

	key, cacheable := db.cacheKey(q)
	var table string
	var gen uint64
	if cacheable {
		rows, ok, err := db.cache.Get(ctx, key)
		if err != nil {
			db.logger.Log("CACHE GET "+key, 0, err)
		}
		if ok {
			return db.serializer.SerializeRows(rows).Collect()
		}
		table = q.cacheTable()
		gen = db.generation(table)
	}

	rows, err := db.executor.ExecuteSelect(ctx, q)
	if err != nil {
		return nil, err
	}

	if cacheable {
		db.store(ctx, key, table, gen, rows)
	}
	return db.serializer.SerializeRows(rows).Collect()
}

// Exec, bir yazma sorgusunu çalıştırır. Başarılı yazma önbellekteki ilgili kayıtları siler.
func (db *DB) Exec(ctx context.Context, q *Query) (ExecResult, error) {
	q = q.withPrefix(db.prefix)
	db.bump(q)
	res, err := db.executor.ExecuteMutation(ctx, q)
	if err == nil {
		db.invalidate(ctx, q)
	}
	return res, err
}

func (db *DB) cacheKey(q *Query) (string, bool) {
	if db.cache == nil || q == nil || q.IsRaw() || q.Err() != nil || !q.Kind().IsRead() || q.readsOtherTables() {
		return "", false
	}
	sql, err := q.ToSQL(db.grammar)
	if err != nil {
		return "", false
	}
	return CacheKey(db.grammar.Name(), sql), true
}

// generation, tablonun şu anki yazma sayacını döndürür.
func (db *DB) generation(table string) uint64 {
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()
	return db.flushes + db.writes[table]
}

// bump, yazma başlamadan sayacı artırır; süren okumalar sonucunu önbelleğe yazmaz.
func (db *DB) bump(q *Query) {
	if db.cache == nil || q == nil {
		return
	}
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()
	db.bumpLocked(q)
}

func (db *DB) bumpLocked(q *Query) {
	if q.IsRaw() {
		db.flushes++
		return
	}
	if db.writes == nil {
		db.writes = make(map[string]uint64)
	}
	db.writes[q.cacheTable()]++
}

// store, okuma sırasında tabloya yazma olmadıysa satırları önbelleğe yazar.
// Kontrol ve yazma, invalidate ile aynı kilit altında yapılır.
func (db *DB) store(ctx context.Context, key, table string, gen uint64, rows []Row) {
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()
	if db.flushes+db.writes[table] != gen {
		return
	}
	if err := db.cache.Set(ctx, key, table, rows); err != nil {
		db.logger.Log("CACHE SET "+key, 0, err)
	}
}

func (db *DB) invalidate(ctx context.Context, q *Query) {
	if db.cache == nil {
		return
	}
	db.cacheMu.Lock()
	defer db.cacheMu.Unlock()
	db.bumpLocked(q)

	table := ""
	if !q.IsRaw() {
		table = q.cacheTable()
	}
	if err := db.cache.Invalidate(ctx, table); err != nil {
		db.logger.Log("CACHE INVALIDATE "+table, 0, err)
	}
}

// ----------------------------------------------------------------------------
// Structured operations
// ----------------------------------------------------------------------------

// SelectFirst, tablodan ilk kaydı seçer. Sonuç en fazla bir kayıt içerir.
//
//	recs, err := db.SelectFirst(ctx, "users", recordsql.Where("id = ?", 2))
func (db *DB) SelectFirst(ctx context.Context, table string, opts ...QueryOption) ([]Record, error) {
	return db.Select(ctx, SelectFirst(table, opts...))
}

// SelectAll, koşula uyan bütün kayıtları seçer.
//
//	recs, err := db.SelectAll(ctx, "users", recordsql.OrderBy("name"), recordsql.Descending())
func (db *DB) SelectAll(ctx context.Context, table string, opts ...QueryOption) ([]Record, error) {
	return db.Select(ctx, SelectAll(table, opts...))
}

// UpdateAll, koşula uyan kayıtları günceller.
func (db *DB) UpdateAll(ctx context.Context, table string, values Values, opts ...QueryOption) (ExecResult, error) {
	return db.Exec(ctx, UpdateAll(table, values, opts...))
}

// DeleteAllFrom, koşula uyan kayıtları siler.
func (db *DB) DeleteAllFrom(ctx context.Context, table string, opts ...QueryOption) (ExecResult, error) {
	return db.Exec(ctx, DeleteAllFrom(table, opts...))
}

// InsertInto, tabloya tek bir kayıt ekler.
func (db *DB) InsertInto(ctx context.Context, table string, values Values) (ExecResult, error) {
	return db.Exec(ctx, InsertInto(table, values))
}

// ----------------------------------------------------------------------------
// Raw text operations
// ----------------------------------------------------------------------------

// ExecuteSelectQuery, ham bir okuma ifadesini çalıştırır. Yazma ifadeleri QueryTypeMismatch üretir.
func (db *DB) ExecuteSelectQuery(ctx context.Context, text string) ([]Record, error) {
	return db.Select(ctx, RawQuery(text))
}

// ExecuteMutationQuery, ham bir INSERT/UPDATE/DELETE ifadesini çalıştırır.
func (db *DB) ExecuteMutationQuery(ctx context.Context, text string) (ExecResult, error) {
	return db.Exec(ctx, RawQuery(text))
}

// ExecuteUpdateQuery, yalnızca UPDATE ifadelerini kabul eder.
func (db *DB) ExecuteUpdateQuery(ctx context.Context, text string) (ExecResult, error) {
	q := RawQuery(text)
	db.bump(q)
	res, err := db.executor.ExecuteUpdate(ctx, q)
	if err == nil {
		db.invalidate(ctx, q)
	}
	return res, err
}

// ExecuteDeleteQuery, yalnızca DELETE ifadelerini kabul eder.
func (db *DB) ExecuteDeleteQuery(ctx context.Context, text string) (ExecResult, error) {
	q := RawQuery(text)
	db.bump(q)
	res, err := db.executor.ExecuteDelete(ctx, q)
	if err == nil {
		db.invalidate(ctx, q)
	}
	return res, err
}

// ExecuteQuery, ifadenin türüne göre okuma veya yazma yolunu kendisi seçer.
// Okuma ifadelerinde Result.Records, diğerlerinde Result.Exec doludur.
func (db *DB) ExecuteQuery(ctx context.Context, text string) (*Result, error) {
	q := RawQuery(text)
	if !q.Kind().IsRead() {
		db.bump(q)
	}
	out, err := db.executor.ExecuteQuery(ctx, q)
	if err != nil {
		if out != nil && out.Exec != nil {
			return &Result{Kind: out.Kind, Exec: out.Exec}, err
		}
		return nil, err
	}

	if out.Exec != nil {
		db.invalidate(ctx, q)
		return &Result{Kind: out.Kind, Exec: out.Exec}, nil
	}

	records, err := db.serializer.SerializeRows(out.Rows).Collect()
	if err != nil {
		return nil, err
	}
	return &Result{Kind: out.Kind, Records: records}, nil
}
