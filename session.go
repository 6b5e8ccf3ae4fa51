package recordsql

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Dialer, verilen kimlikle motora yeni bir oturum açar.
// database/sql üzerinde çalışan implementasyonu SQLDialer'dır; testler sahte bir Dialer verebilir.
type Dialer interface {
	Dial(ctx context.Context, id Identity) (Conn, error)
}

// Conn, tek bir fiziksel oturumdur. Aynı anda yalnızca bir ifade çalıştırabilir;
// bu kuralı Session garanti eder.
type Conn interface {
	Query(ctx context.Context, query string) ([]Row, error)
	Exec(ctx context.Context, query string) (ExecResult, error)
	Close() error
}

// Connection, Executor'ın bağlı olduğu arayüzdür. *Session bunu uygular.
type Connection interface {
	IsConnected() bool
	Query(ctx context.Context, query string) ([]Row, error)
	Exec(ctx context.Context, query string) (ExecResult, error)
}

var _ Connection = (*Session)(nil)

// Session, tek ve paylaşılan bağlantı bağlamıdır: kimlik, bağlı olma durumu ve
// sürücü oturumu burada tutulur. Oturum bağlı değilken bir kez Connect edilir;
// başarısız Connect durumu değiştirmez ve tekrar denenebilir.
//
// Sürücü oturumuna erişim tek ağırlıklı bir semaphore ile sıralanır; aynı oturum
// üzerinde iki ifade asla iç içe geçmez. Semaphore çağıranın context'i ile alınır
// ve her çıkış yolunda bırakılır.
type Session struct {
	dialer Dialer
	logger Logger
	guard  *semaphore.Weighted

	mu        sync.RWMutex
	identity  Identity
	conn      Conn
	connected bool
	closed    bool
}

// NewSession, verilen Dialer için bağlı olmayan bir oturum oluşturur.
func NewSession(d Dialer, logger Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Session{
		dialer: d,
		logger: logger,
		guard:  semaphore.NewWeighted(1),
	}
}

// Connect, oturumu açar. Oturum zaten bağlıysa veya kapatılmışsa InvalidArgument,
// motor bağlantıyı reddederse ConnectionError döner.
func (s *Session) Connect(ctx context.Context, id Identity) error {
	if err := s.acquire(ctx, "connect"); err != nil {
		return err
	}
	defer s.guard.Release(1)

	s.mu.RLock()
	connected, closed := s.connected, s.closed
	s.mu.RUnlock()
	switch {
	case closed:
		return invalidArgument("connect", errors.New("session is closed"))
	case connected:
		return invalidArgument("connect", errors.New("session is already connected"))
	}

	start := time.Now()
	conn, err := s.dialer.Dial(ctx, id)
	if err != nil {
		e := classify("connect", "", err)
		switch e.Code {
		case CodeEngine, CodeSyntax, CodeConstraint:
			e.Code = CodeConnection
		}
		s.logger.Log("CONNECT "+id.String(), time.Since(start), e)
		return e
	}

	s.mu.Lock()
	s.identity = id
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	s.logger.Log("CONNECT "+id.String(), time.Since(start), nil)
	return nil
}

// IsConnected, oturumun o anki durumunu döndürür.
func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Identity, bağlanırken kullanılan kimliği döndürür.
func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Query, okuma ifadesini sürücü oturumunda çalıştırır.
func (s *Session) Query(ctx context.Context, query string) ([]Row, error) {
	conn, err := s.enter(ctx, "query")
	if err != nil {
		return nil, err
	}
	defer s.guard.Release(1)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, classify("query", query, err)
	}
	return rows, nil
}

// Exec, yazma ifadesini sürücü oturumunda çalıştırır.
func (s *Session) Exec(ctx context.Context, query string) (ExecResult, error) {
	conn, err := s.enter(ctx, "exec")
	if err != nil {
		return ExecResult{Code: CodeOf(err)}, err
	}
	defer s.guard.Release(1)

	res, err := conn.Exec(ctx, query)
	if err != nil {
		e := classify("exec", query, err)
		return ExecResult{Code: e.Code}, e
	}
	res.Code = CodeSuccess
	return res, nil
}

// Close, sürücü oturumunu kapatır. Kapatılan oturum yeniden bağlanamaz.
func (s *Session) Close() error {
	if err := s.acquire(context.Background(), "close"); err != nil {
		return err
	}
	defer s.guard.Release(1)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.closed = true
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	start := time.Now()
	err := conn.Close()
	if err != nil {
		err = classify("close", "", err)
	}
	s.logger.Log("CLOSE", time.Since(start), err)
	return err
}

// enter, semaphore'u alır ve bağlı oturumu döndürür. Hata dönerse semaphore bırakılmıştır.
func (s *Session) enter(ctx context.Context, op string) (Conn, error) {
	if !s.IsConnected() {
		return nil, &Error{Code: CodeNotConnected, Op: op, Err: errors.New("connect must succeed before queries")}
	}
	if err := s.acquire(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		s.guard.Release(1)
		return nil, &Error{Code: CodeNotConnected, Op: op, Err: errors.New("session closed")}
	}
	return conn, nil
}

func (s *Session) acquire(ctx context.Context, op string) error {
	if err := s.guard.Acquire(ctx, 1); err != nil {
		return &Error{Code: CodeTimeout, Op: op, Err: err}
	}
	return nil
}
