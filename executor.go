package recordsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biyonik/go-record-sql/dialect"
)

/*
=======================================================================================================================
  💠 RECORDSQL – Sorgu Yürütücü 💠
  Bu dosya; derlenmiş ya da çağıranın yazdığı bir sorgunun, türüne göre doğru yola yönlendirildiği yerdir:
  okuma ifadeleri satır döndüren yola, yazma ifadeleri etkilenen satır sayısı döndüren yola gider.

  Her çağrı aynı sırayı izler:
  🔹 Oturum bağlı mı?              — değilse NotConnected, motora tek bayt gitmez.
  🔹 Sorgu kurulurken hata var mı?  — varsa InvalidArgument.
  🔹 Tür bu yola uygun mu?          — değilse QueryTypeMismatch.
  🔹 Derle, süre sınırıyla çalıştır, sürücü hatasını sınıflandır.

  Hiçbir çağrı otomatik olarak tekrarlanmaz; yazma ifadeleri idempotent değildir.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// Executor, Query'leri bir Connection üzerinde türüne göre çalıştırır.
// Bağlantıya doğrudan değil, Connection arayüzü üzerinden erişir.
type Executor struct {
	conn    Connection
	grammar dialect.Grammar
	logger  Logger
	debug   bool
	timeout time.Duration
}

// NewExecutor, varsayılan ayarlarla (MySQL grameri, süre sınırı yok) bir Executor oluşturur.
func NewExecutor(conn Connection, grammar dialect.Grammar) *Executor {
	if grammar == nil {
		grammar = dialect.NewMySQLGrammar()
	}
	return &Executor{conn: conn, grammar: grammar, logger: NopLogger{}}
}

// Outcome, ExecuteQuery'nin ham sonucudur: okuma ifadelerinde Rows, diğerlerinde Exec doludur.
type Outcome struct {
	Kind dialect.Kind
	Rows []Row
	Exec *ExecResult
}

// ExecuteSelect, okuma ifadesini çalıştırır ve ham satırları döndürür.
// Sonuç boşsa boş dilim döner; bu bir hata değildir.
func (e *Executor) ExecuteSelect(ctx context.Context, q *Query) ([]Row, error) {
	sql, err := e.prepare("select", q, dialect.Kind.IsRead)
	if err != nil {
		return nil, err
	}
	return e.query(ctx, sql)
}

// ExecuteMutation, INSERT/UPDATE/DELETE ifadesini çalıştırır. Diğer türler QueryTypeMismatch üretir.
// Hata durumunda dönen ExecResult.Code hatanın sınıfını taşır.
func (e *Executor) ExecuteMutation(ctx context.Context, q *Query) (ExecResult, error) {
	return e.mutate(ctx, "mutation", q, dialect.Kind.IsWrite)
}

// ExecuteUpdate, yalnızca UPDATE ifadelerini kabul eder.
func (e *Executor) ExecuteUpdate(ctx context.Context, q *Query) (ExecResult, error) {
	return e.mutate(ctx, "update", q, func(k dialect.Kind) bool { return k == dialect.KindUpdate })
}

// ExecuteDelete, yalnızca DELETE ifadelerini kabul eder.
func (e *Executor) ExecuteDelete(ctx context.Context, q *Query) (ExecResult, error) {
	return e.mutate(ctx, "delete", q, func(k dialect.Kind) bool { return k == dialect.KindDelete })
}

// ExecuteQuery, sorgunun türüne bakarak okuma veya yazma yoluna yönlendirir.
// DDL gibi ne okuma ne yazma olan ifadeler yazma yolundan çalışır.
func (e *Executor) ExecuteQuery(ctx context.Context, q *Query) (*Outcome, error) {
	sql, err := e.prepare("query", q, func(dialect.Kind) bool { return true })
	if err != nil {
		return nil, err
	}

	if q.Kind().IsRead() {
		rows, err := e.query(ctx, sql)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: q.Kind(), Rows: rows}, nil
	}

	res, err := e.exec(ctx, sql)
	return &Outcome{Kind: q.Kind(), Exec: &res}, err
}

func (e *Executor) mutate(ctx context.Context, op string, q *Query, accept func(dialect.Kind) bool) (ExecResult, error) {
	sql, err := e.prepare(op, q, accept)
	if err != nil {
		return ExecResult{Code: CodeOf(err)}, err
	}
	return e.exec(ctx, sql)
}

// prepare, ağa çıkmadan önceki bütün kontrolleri yapar ve SQL metnini döndürür.
func (e *Executor) prepare(op string, q *Query, accept func(dialect.Kind) bool) (string, error) {
	if !e.conn.IsConnected() {
		return "", &Error{Code: CodeNotConnected, Op: op, Err: errors.New("connect must succeed before queries")}
	}
	if q == nil {
		return "", invalidArgument(op, errors.New("nil query"))
	}
	if err := q.Err(); err != nil {
		return "", err
	}
	if !accept(q.Kind()) {
		return "", &Error{
			Code:  CodeQueryTypeMismatch,
			Op:    op,
			Query: q.GetText(),
			Err:   fmt.Errorf("%s statement cannot run on the %s path", q.Kind(), op),
		}
	}
	sql, err := q.ToSQL(e.grammar)
	if err != nil {
		return "", err
	}
	if !e.grammar.SingleStatement(sql) {
		return "", &Error{
			Code:  CodeInvalidArgument,
			Op:    op,
			Query: sql,
			Err:   errors.New("multiple statements are not allowed"),
		}
	}
	// Koşul metni serbest olduğundan derlenmiş okuma ifadesi yeniden sınıflanır.
	if q.Kind().IsRead() && !dialect.DetectKind(sql).IsRead() {
		return "", &Error{
			Code:  CodeQueryTypeMismatch,
			Op:    op,
			Query: sql,
			Err:   errors.New("read statement carries a write"),
		}
	}
	return sql, nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Executor) query(ctx context.Context, sql string) ([]Row, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := e.conn.Query(ctx, sql)
	if err != nil {
		err = classify("select", sql, err)
	}
	e.log(sql, start, err)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

func (e *Executor) exec(ctx context.Context, sql string) (ExecResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := e.conn.Exec(ctx, sql)
	if err != nil {
		ce := classify("exec", sql, err)
		e.log(sql, start, ce)
		return ExecResult{Code: ce.Code}, ce
	}
	e.log(sql, start, nil)
	res.Code = CodeSuccess
	return res, nil
}

func (e *Executor) log(sql string, start time.Time, err error) {
	if e.debug || err != nil {
		e.logger.Log(sql, time.Since(start), err)
	}
}
