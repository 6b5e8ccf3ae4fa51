// Package recordsql provides a small relational database access layer for Go.
//
// go-record-sql builds the five common statement shapes from a table name and
// a few options, runs them over a single shared session, and turns the
// resulting rows into ordered records with coerced values.
//
// # Quick Start
//
// Open a session from a Config and run queries:
//
//	cfg := recordsql.DefaultConfig()
//	cfg.User, cfg.Password, cfg.Database = "app", "secret", "shop"
//
//	db, err := recordsql.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Select Queries
//
// SelectFirst returns at most one record, SelectAll returns every match:
//
//	first, err := db.SelectFirst(ctx, "users", recordsql.Where("id = ?", 2))
//
//	all, err := db.SelectAll(ctx, "users",
//	    recordsql.Where("status = 'active'"),
//	    recordsql.OrderBy("created_at"),
//	    recordsql.Descending(),
//	)
//
// The condition text is inserted as given. Arguments passed to Where replace
// each '?' in order with an escaped literal of the active grammar.
//
// # Mutations
//
//	res, err := db.InsertInto(ctx, "users", recordsql.Values{"id": 3, "name": "carol"})
//	res, err = db.UpdateAll(ctx, "users", recordsql.Values{"name": "bob"}, recordsql.Where("id = 2"))
//	res, err = db.DeleteAllFrom(ctx, "users", recordsql.Where("id = 1"))
//
// An empty Values map fails with an InvalidArgument error before anything is
// sent to the engine.
//
// # Raw Statements
//
// Caller-written SQL is tagged by its leading keyword. ExecuteSelectQuery
// accepts read statements only, ExecuteMutationQuery accepts INSERT, UPDATE and
// DELETE only, and ExecuteQuery routes any statement to the right path:
//
//	res, err := db.ExecuteQuery(ctx, "CREATE TABLE users (id INT, name TEXT)")
//
// # Records
//
// Each record keeps the column order of the result set and marshals to JSON
// and YAML in that order. NULL values take the serializer's default for the
// column or fail with UnexpectedNull:
//
//	s := recordsql.NewSerializer(recordsql.WithDefault("nickname", ""))
//	db := recordsql.New(dialer, recordsql.WithSerializer(s))
//
// # Errors
//
// Every failure is an *Error carrying an ErrorCode. Use errors.Is with the
// package sentinels or CodeOf to branch on the kind:
//
//	if errors.Is(err, recordsql.ErrNotConnected) {
//	    // connect first
//	}
//
// # Grammars
//
// MySQL, PostgreSQL, SQL Server and DuckDB grammars live in the dialect package.
// Open picks one from the driver name; New defaults to MySQL.
package recordsql
