package recordsql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
)

// MySQL server/client error numbers.
var mysqlCodes = map[uint16]ErrorCode{
	1062: CodeConstraint, // ER_DUP_ENTRY
	1048: CodeConstraint, // ER_BAD_NULL_ERROR
	1216: CodeConstraint, // ER_NO_REFERENCED_ROW
	1217: CodeConstraint, // ER_ROW_IS_REFERENCED
	1451: CodeConstraint, // ER_ROW_IS_REFERENCED_2
	1452: CodeConstraint, // ER_NO_REFERENCED_ROW_2
	3819: CodeConstraint, // ER_CHECK_CONSTRAINT_VIOLATED
	1064: CodeSyntax,     // ER_PARSE_ERROR
	1054: CodeSyntax,     // ER_BAD_FIELD_ERROR
	1146: CodeSyntax,     // ER_NO_SUCH_TABLE
	1044: CodeConnection, // ER_DBACCESS_DENIED_ERROR
	1045: CodeConnection, // ER_ACCESS_DENIED_ERROR
	2002: CodeConnection,
	2003: CodeConnection,
	2006: CodeConnection, // server has gone away
	2013: CodeConnection, // lost connection during query
	3024: CodeTimeout,    // ER_QUERY_TIMEOUT
}

// SQL Server error numbers.
var mssqlCodes = map[int32]ErrorCode{
	2627:  CodeConstraint, // unique constraint
	2601:  CodeConstraint, // unique index
	547:   CodeConstraint, // foreign key / check
	515:   CodeConstraint, // NULL into NOT NULL column
	102:   CodeSyntax,
	156:   CodeSyntax,
	207:   CodeSyntax, // invalid column name
	208:   CodeSyntax, // invalid object name
	18456: CodeConnection,
	4060:  CodeConnection,
}

// sqlStateCode maps a PostgreSQL SQLSTATE to an ErrorCode by class.
func sqlStateCode(state string) ErrorCode {
	if state == "57014" { // query_canceled
		return CodeTimeout
	}
	if len(state) < 2 {
		return CodeEngine
	}
	switch state[:2] {
	case "23":
		return CodeConstraint
	case "42":
		return CodeSyntax
	case "08", "28":
		return CodeConnection
	}
	return CodeEngine
}

// classify wraps a driver error into an *Error with a code from the taxonomy.
// Errors that are already classified pass through with the query attached.
func classify(op, query string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		if classified.Query == "" {
			classified.Query = query
		}
		return classified
	}

	e := &Error{Code: CodeEngine, Op: op, Query: query, Err: err}

	var (
		myErr  *mysql.MySQLError
		pqErr  *pq.Error
		pgErr  *pgconn.PgError
		msErr  mssql.Error
		netErr net.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		e.Code = CodeTimeout
	case errors.As(err, &myErr):
		e.Native = strconv.Itoa(int(myErr.Number))
		if code, ok := mysqlCodes[myErr.Number]; ok {
			e.Code = code
		}
	case errors.As(err, &pqErr):
		e.Native = string(pqErr.Code)
		e.Code = sqlStateCode(string(pqErr.Code))
	case errors.As(err, &pgErr):
		e.Native = pgErr.Code
		e.Code = sqlStateCode(pgErr.Code)
	case errors.As(err, &msErr):
		e.Native = strconv.Itoa(int(msErr.Number))
		if code, ok := mssqlCodes[msErr.Number]; ok {
			e.Code = code
		}
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, io.ErrUnexpectedEOF):
		e.Code = CodeConnection
	case errors.As(err, &netErr):
		e.Code = CodeConnection
		if netErr.Timeout() {
			e.Code = CodeTimeout
		}
	}

	return e
}
