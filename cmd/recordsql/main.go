package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	recordsql "github.com/biyonik/go-record-sql"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `recordsql %s

Usage:
  recordsql [flags] <command> [arguments]

Commands:
  first  <table> [-where c] [-order a,b] [-desc] [-columns a,b]
  all    <table> [-where c] [-order a,b] [-desc] [-columns a,b]
  insert <table> col=val...
  update <table> [-where c] col=val...
  delete <table> [-where c]
  select "<sql>"    run a read statement
  mutate "<sql>"    run an INSERT, UPDATE or DELETE statement
  query  "<sql>"    run any statement

Values: null, integers, floats, true/false; wrap in single quotes to force a string.

Flags:
`

// options holds the global flags.
type options struct {
	config   string
	driver   string
	host     string
	port     int
	user     string
	password string
	database string
	socket   string
	timeout  time.Duration
	debug    bool
	format   string
	tmpl     string
}

// openDB is replaced in tests.
var openDB = recordsql.Open

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recordsql", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, usage, Version)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.config, "config", "", "YAML config file")
	fs.StringVar(&opts.driver, "driver", "", "driver: mysql, postgres, pgx, sqlserver, duckdb")
	fs.StringVar(&opts.host, "host", "", "server host")
	fs.IntVar(&opts.port, "port", 0, "server port")
	fs.StringVar(&opts.user, "user", "", "user name")
	fs.StringVar(&opts.password, "password", "", "password")
	fs.StringVar(&opts.database, "database", "", "database name (file path for duckdb)")
	fs.StringVar(&opts.socket, "socket", "", "unix socket path")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-statement timeout")
	fs.BoolVar(&opts.debug, "debug", false, "log every statement")
	fs.StringVar(&opts.format, "format", "json", "output format: json, yaml, template")
	fs.StringVar(&opts.tmpl, "template", "", "Go template for -format template (sprig functions available)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return int(recordsql.CodeInvalidArgument)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return int(recordsql.CodeInvalidArgument)
	}

	cfg, err := buildConfig(fs, opts)
	if err != nil {
		return fail(stderr, err)
	}

	zl := newZap(opts.debug, stderr)
	defer zl.Sync()

	db, err := openDB(ctx, cfg, recordsql.WithLogger(recordsql.NewLogrLogger(zapr.NewLogger(zl))))
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	out, err := execute(ctx, db, fs.Arg(0), fs.Args()[1:])
	if out != nil {
		if rerr := render(stdout, opts.format, opts.tmpl, out); rerr != nil {
			return fail(stderr, recordsql.NewError(recordsql.CodeInvalidArgument, "render", rerr))
		}
	}
	if err != nil {
		return fail(stderr, err)
	}
	return 0
}

func fail(w io.Writer, err error) int {
	fmt.Fprintln(w, err)
	code := int(recordsql.CodeOf(err))
	if code == 0 {
		code = int(recordsql.CodeEngine)
	}
	return code
}

// buildConfig loads -config (or the defaults) and applies explicitly set flags on top.
func buildConfig(fs *flag.FlagSet, opts options) (*recordsql.Config, error) {
	cfg := recordsql.DefaultConfig()
	if opts.config != "" {
		loaded, err := recordsql.LoadConfigFile(opts.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = opts.driver
		case "host":
			cfg.Host = opts.host
		case "port":
			cfg.Port = opts.port
		case "user":
			cfg.User = opts.user
		case "password":
			cfg.Password = opts.password
		case "database":
			cfg.Database = opts.database
		case "socket":
			cfg.Socket = opts.socket
		case "timeout":
			cfg.Timeout = opts.timeout
		case "debug":
			cfg.Debug = opts.debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newZap(debug bool, w io.Writer) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		// logr V(1) maps to zap level -1.
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// execResult is the printable form of a mutation outcome.
type execResult struct {
	Code         string `json:"code" yaml:"code"`
	RowsAffected int64  `json:"rows_affected" yaml:"rows_affected"`
	LastInsertID int64  `json:"last_insert_id" yaml:"last_insert_id"`
}

func toExecResult(r recordsql.ExecResult) execResult {
	return execResult{Code: r.Code.String(), RowsAffected: r.RowsAffected, LastInsertID: r.LastInsertID}
}

// execute dispatches one subcommand. The returned value is rendered even when err is set.
func execute(ctx context.Context, db *recordsql.DB, command string, args []string) (any, error) {
	switch command {
	case "first", "all":
		table, qopts, _, err := parseTableCommand(command, args, false)
		if err != nil {
			return nil, err
		}
		if command == "first" {
			return db.SelectFirst(ctx, table, qopts...)
		}
		return db.SelectAll(ctx, table, qopts...)

	case "insert":
		if len(args) == 0 {
			return nil, usageError("insert needs a table")
		}
		values, err := parseAssignments(args[1:])
		if err != nil {
			return nil, err
		}
		res, err := db.InsertInto(ctx, args[0], values)
		return toExecResult(res), err

	case "update":
		table, qopts, rest, err := parseTableCommand(command, args, true)
		if err != nil {
			return nil, err
		}
		values, err := parseAssignments(rest)
		if err != nil {
			return nil, err
		}
		res, err := db.UpdateAll(ctx, table, values, qopts...)
		return toExecResult(res), err

	case "delete":
		table, qopts, _, err := parseTableCommand(command, args, true)
		if err != nil {
			return nil, err
		}
		res, err := db.DeleteAllFrom(ctx, table, qopts...)
		return toExecResult(res), err

	case "select", "mutate", "query":
		if len(args) != 1 {
			return nil, usageError(command + " needs exactly one SQL argument")
		}
		return executeRaw(ctx, db, command, args[0])
	}
	return nil, usageError("unknown command " + strconv.Quote(command))
}

func executeRaw(ctx context.Context, db *recordsql.DB, command, text string) (any, error) {
	switch command {
	case "select":
		return db.ExecuteSelectQuery(ctx, text)
	case "mutate":
		res, err := db.ExecuteMutationQuery(ctx, text)
		return toExecResult(res), err
	}

	res, err := db.ExecuteQuery(ctx, text)
	if res == nil {
		return nil, err
	}
	if res.IsRead() {
		return res.Records, err
	}
	return toExecResult(*res.Exec), err
}

// parseTableCommand parses "<table> [flags] [rest...]". Write commands do not accept ordering flags.
func parseTableCommand(command string, args []string, write bool) (string, []recordsql.QueryOption, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, nil, usageError(command + " needs a table")
	}
	table := args[0]

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	where := fs.String("where", "", "condition")
	var order, columns *string
	var desc *bool
	if !write {
		order = fs.String("order", "", "comma separated order columns")
		desc = fs.Bool("desc", false, "descending order")
		columns = fs.String("columns", "", "comma separated columns")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", nil, nil, usageError(err.Error())
	}

	var qopts []recordsql.QueryOption
	if *where != "" {
		qopts = append(qopts, recordsql.Where(*where))
	}
	if !write {
		if *order != "" {
			qopts = append(qopts, recordsql.OrderBy(splitList(*order)...))
		}
		if *desc {
			qopts = append(qopts, recordsql.Descending())
		}
		if *columns != "" {
			qopts = append(qopts, recordsql.Columns(splitList(*columns)...))
		}
	}
	return table, qopts, fs.Args(), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseAssignments turns col=val arguments into Values.
func parseAssignments(args []string) (recordsql.Values, error) {
	values := make(recordsql.Values, len(args))
	for _, a := range args {
		col, raw, ok := strings.Cut(a, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, usageError("expected col=val, got " + strconv.Quote(a))
		}
		values[col] = parseValue(raw)
	}
	return values, nil
}

// parseValue infers a typed value from command line text.
func parseValue(s string) any {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if strings.EqualFold(s, "null") {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func usageError(msg string) error {
	return recordsql.NewError(recordsql.CodeInvalidArgument, "cli", errors.New(msg))
}

// render writes v as JSON, YAML or through a sprig-enabled template.
func render(w io.Writer, format, tmpl string, v any) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "template":
		if tmpl == "" {
			return errors.New("-format template needs -template")
		}
		t, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
		if err != nil {
			return err
		}
		return t.Execute(w, templateData(v))
	}
	return fmt.Errorf("unknown format %q", format)
}

// templateData exposes records as maps so templates can use {{.column}}.
func templateData(v any) any {
	recs, ok := v.([]recordsql.Record)
	if !ok {
		return v
	}
	out := make([]map[string]any, len(recs))
	for i, r := range recs {
		out[i] = r.Map()
	}
	return out
}
