//go:build cgo

package main

// DuckDB needs cgo; without it the duckdb driver is simply not registered.
import _ "github.com/duckdb/duckdb-go/v2"
