package recordsql

import "errors"

// ErrorCode classifies the outcome of an operation. CodeSuccess is zero;
// every failure maps to a nonzero code.
type ErrorCode int

const (
	CodeSuccess ErrorCode = iota
	CodeNotConnected
	CodeInvalidArgument
	CodeQueryTypeMismatch
	CodeConnection
	CodeUnexpectedNull
	CodeTypeCoercion
	CodeEngine
	CodeSyntax     // engine rejected the statement text
	CodeConstraint // engine reported a constraint violation
	CodeTimeout
)

var codeNames = [...]string{
	CodeSuccess:           "Success",
	CodeNotConnected:      "NotConnected",
	CodeInvalidArgument:   "InvalidArgument",
	CodeQueryTypeMismatch: "QueryTypeMismatch",
	CodeConnection:        "ConnectionError",
	CodeUnexpectedNull:    "UnexpectedNull",
	CodeTypeCoercion:      "TypeCoercionError",
	CodeEngine:            "EngineError",
	CodeSyntax:            "SyntaxError",
	CodeConstraint:        "ConstraintViolation",
	CodeTimeout:           "Timeout",
}

func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "Unknown"
}

// Sentinel errors for go-record-sql.
// These errors can be checked using errors.Is().
var (
	// ErrNotConnected is returned when an operation runs before a successful Connect.
	ErrNotConnected = errors.New("recordsql: not connected")

	// ErrInvalidArgument is returned for empty tables, empty assignments and malformed identifiers.
	ErrInvalidArgument = errors.New("recordsql: invalid argument")

	// ErrQueryTypeMismatch is returned when a statement is routed to the wrong execution path.
	ErrQueryTypeMismatch = errors.New("recordsql: query type mismatch")

	// ErrConnection is returned for authentication or transport failures.
	ErrConnection = errors.New("recordsql: connection error")

	// ErrUnexpectedNull is returned when a non-nullable column holds no value.
	ErrUnexpectedNull = errors.New("recordsql: unexpected null")

	// ErrTypeCoercion is returned when a raw field cannot be converted to its column type.
	ErrTypeCoercion = errors.New("recordsql: type coercion failed")

	// ErrEngine is returned for any other engine-reported failure.
	ErrEngine = errors.New("recordsql: engine error")

	// ErrSyntax is returned when the engine rejects the statement text. It also matches ErrEngine.
	ErrSyntax = errors.New("recordsql: syntax error")

	// ErrConstraint is returned when the engine reports a constraint violation. It also matches ErrEngine.
	ErrConstraint = errors.New("recordsql: constraint violation")

	// ErrTimeout is returned when a call exceeds its deadline or its context is canceled.
	ErrTimeout = errors.New("recordsql: timeout")
)

var codeSentinels = map[ErrorCode]error{
	CodeNotConnected:      ErrNotConnected,
	CodeInvalidArgument:   ErrInvalidArgument,
	CodeQueryTypeMismatch: ErrQueryTypeMismatch,
	CodeConnection:        ErrConnection,
	CodeUnexpectedNull:    ErrUnexpectedNull,
	CodeTypeCoercion:      ErrTypeCoercion,
	CodeEngine:            ErrEngine,
	CodeSyntax:            ErrSyntax,
	CodeConstraint:        ErrConstraint,
	CodeTimeout:           ErrTimeout,
}

// Error carries a classified failure together with the operation and query
// that produced it. Native holds the engine's own error code when known.
type Error struct {
	Code   ErrorCode
	Op     string
	Query  string
	Native string
	Err    error
}

func (e *Error) Error() string {
	msg := "recordsql: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Code.String()
	if e.Native != "" {
		msg += " [" + e.Native + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's code.
// Syntax and constraint failures also match ErrEngine.
func (e *Error) Is(target error) bool {
	if s, ok := codeSentinels[e.Code]; ok && s == target {
		return true
	}
	return target == ErrEngine && (e.Code == CodeSyntax || e.Code == CodeConstraint)
}

// NewError creates a new Error with context.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the ErrorCode carried by err. A nil error is CodeSuccess;
// an unclassified error is CodeEngine.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	for code, sentinel := range codeSentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeEngine
}

func invalidArgument(op string, err error) *Error {
	return &Error{Code: CodeInvalidArgument, Op: op, Err: err}
}
