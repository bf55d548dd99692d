// Package relational runs SQL script files against PostgreSQL. Every
// operation acquires its own connection and releases it before returning;
// there is no pooling and no shared state between calls.
package relational

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ingham-physics/auscat-util/internal/config"
	"github.com/ingham-physics/auscat-util/internal/logger"
	"github.com/ingham-physics/auscat-util/internal/metrics"
	"github.com/ingham-physics/auscat-util/internal/retry"
	"github.com/ingham-physics/auscat-util/internal/table"
)

// Runner executes SQL scripts and queries for one connection configuration.
type Runner struct {
	cfg      *config.ConnectionConfig
	retryCfg retry.Config
}

// Option configures a Runner.
type Option func(*Runner)

// WithRetryConfig overrides the connection retry settings.
func WithRetryConfig(cfg retry.Config) Option {
	return func(r *Runner) {
		r.retryCfg = cfg
	}
}

// NewRunner creates a Runner for the given connection configuration.
func NewRunner(cfg *config.ConnectionConfig, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		retryCfg: retry.DefaultConfig,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// connect dials a fresh connection, retrying transient failures.
func (r *Runner) connect(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	err := retry.Do(ctx, func(ctx context.Context) error {
		c, err := pgx.Connect(ctx, r.cfg.DSN())
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, r.retryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d/%s: %w",
			r.cfg.Hostname, r.cfg.PortNumber, r.cfg.DBName, err)
	}
	return conn, nil
}

// RunScript executes every statement of the script sequentially on a single
// connection, committing each as it goes. Execution stops at the first
// failing statement; statements already executed stay applied. Returns the
// number of statements executed.
func (r *Runner) RunScript(ctx context.Context, scriptPath string) (int, error) {
	l := logger.WithValues(logger.FromContext(ctx), "script", scriptPath)
	l.Info().Msg("running SQL script")

	text, err := ReadScript(scriptPath)
	if err != nil {
		return 0, err
	}
	statements := SplitStatements(text)

	conn, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = conn.Close(ctx)
		l.Info().Msg("script completed")
	}()

	executed := 0
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			metrics.RecordStatement("error")
			logger.WithError(l, err).Error().
				Int("statement", executed+1).
				Str("detail", PgDetail(err)).
				Msg("statement failed")
			return executed, fmt.Errorf("failed to execute statement %d of %s: %w",
				executed+1, scriptPath, err)
		}
		metrics.RecordStatement("success")
		executed++
	}

	l.Info().Int("statements", executed).Msg("all statements executed")
	return executed, nil
}

// QueryToTable executes only the first statement of the script and returns
// the result set.
func (r *Runner) QueryToTable(ctx context.Context, scriptPath string) (*table.Table, error) {
	text, err := ReadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.QueryInline(ctx, FirstStatement(text))
}

// QueryInline executes a literal SQL query and returns the result set.
func (r *Runner) QueryInline(ctx context.Context, sqlText string) (*table.Table, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return tableFromRows(rows)
}

// CommitTable replaces the named table with the contents of tbl. The table is
// dropped and recreated with TEXT columns, then bulk-loaded. Not atomic with
// respect to concurrent readers.
func (r *Runner) CommitTable(ctx context.Context, tbl *table.Table, tableName, schema string) error {
	l := logger.FromContext(ctx)

	ident := pgx.Identifier{tableName}
	if schema != "" {
		ident = pgx.Identifier{schema, tableName}
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("failed to drop %s: %w", ident.Sanitize(), err)
	}
	if _, err := conn.Exec(ctx, createTableSQL(ident, tbl.Columns)); err != nil {
		return fmt.Errorf("failed to create %s: %w", ident.Sanitize(), err)
	}

	count, err := conn.CopyFrom(ctx, ident, tbl.Columns, pgx.CopyFromRows(textRows(tbl)))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ident.Sanitize(), err)
	}

	l.Info().Str("table", ident.Sanitize()).Int64("rows", count).Msg("table replaced")
	return nil
}

// createTableSQL builds a CREATE TABLE statement with TEXT columns.
func createTableSQL(ident pgx.Identifier, columns []string) string {
	var b []byte
	b = append(b, "CREATE TABLE "...)
	b = append(b, ident.Sanitize()...)
	b = append(b, " ("...)
	for i, c := range columns {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, pgx.Identifier{c}.Sanitize()...)
		b = append(b, " TEXT"...)
	}
	b = append(b, ')')
	return string(b)
}

// textRows renders table cells as text for the bulk load; NULLs pass through.
func textRows(tbl *table.Table) [][]any {
	out := make([][]any, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[j] = fmt.Sprintf("%v", v)
		}
		out[i] = cells
	}
	return out
}

// tableFromRows drains a pgx result set into a Table.
func tableFromRows(rows pgx.Rows) (*table.Table, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	t := table.New(columns...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if err := t.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to drain result set: %w", err)
	}
	return t, nil
}

// PgDetail extracts the server-side diagnostics from a PostgreSQL error, for
// logging. Returns the plain error text for non-PostgreSQL errors.
func PgDetail(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return fmt.Sprintf("%s: %s (SQLSTATE %s): %s",
				pgErr.Severity, pgErr.Message, pgErr.Code, pgErr.Detail)
		}
		return fmt.Sprintf("%s: %s (SQLSTATE %s)", pgErr.Severity, pgErr.Message, pgErr.Code)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
