package relational

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ingham-physics/auscat-util/internal/logger"
	"github.com/ingham-physics/auscat-util/internal/metrics"
	"github.com/ingham-physics/auscat-util/internal/storage"
	"github.com/ingham-physics/auscat-util/internal/table"
)

// ImportCSV streams a CSV file into the database through the COPY command in
// the script file. The script must contain a single COPY ... FROM STDIN
// statement.
func (r *Runner) ImportCSV(ctx context.Context, scriptPath, csvPath string) (int64, error) {
	l := logger.FromContext(ctx)
	l.Info().Str("script", scriptPath).Str("csv", csvPath).Msg("importing CSV")

	copySQL, err := ReadScript(scriptPath)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV %s: %w", csvPath, err)
	}
	defer f.Close()

	conn, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	tag, err := conn.PgConn().CopyFrom(ctx, f, copySQL)
	if err != nil {
		metrics.RecordCopy("import", "error")
		return 0, fmt.Errorf("failed to import %s: %w", csvPath, err)
	}

	metrics.RecordCopy("import", "success")
	l.Info().Int64("rows", tag.RowsAffected()).Msg("CSV imported")
	return tag.RowsAffected(), nil
}

// ExportCSV streams the output of the COPY command in the script file into a
// CSV file. The script must contain a single COPY ... TO STDOUT statement.
func (r *Runner) ExportCSV(ctx context.Context, scriptPath, csvPath string) (int64, error) {
	l := logger.FromContext(ctx)
	l.Info().Str("script", scriptPath).Str("csv", csvPath).Msg("exporting CSV")

	copySQL, err := ReadScript(scriptPath)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create CSV %s: %w", csvPath, err)
	}
	defer f.Close()

	conn, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	tag, err := conn.PgConn().CopyTo(ctx, f, copySQL)
	if err != nil {
		metrics.RecordCopy("export", "error")
		return 0, fmt.Errorf("failed to export to %s: %w", csvPath, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV %s: %w", csvPath, err)
	}

	metrics.RecordCopy("export", "success")
	l.Info().Int64("rows", tag.RowsAffected()).Msg("CSV exported")
	return tag.RowsAffected(), nil
}

// ImportCSVFromStore streams an object-store CSV through the script's COPY
// command without staging it on local disk.
func (r *Runner) ImportCSVFromStore(ctx context.Context, scriptPath string, store storage.ObjectStore, key string) (int64, error) {
	copySQL, err := ReadScript(scriptPath)
	if err != nil {
		return 0, err
	}

	body, err := store.Download(ctx, key)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	conn, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	tag, err := conn.PgConn().CopyFrom(ctx, body, copySQL)
	if err != nil {
		metrics.RecordCopy("import", "error")
		return 0, fmt.Errorf("failed to import object %s: %w", key, err)
	}
	metrics.RecordCopy("import", "success")
	return tag.RowsAffected(), nil
}

// ExportCSVToStore runs the script's COPY command and uploads the output as
// an object-store CSV.
func (r *Runner) ExportCSVToStore(ctx context.Context, scriptPath string, store storage.ObjectStore, key string) (int64, error) {
	copySQL, err := ReadScript(scriptPath)
	if err != nil {
		return 0, err
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	var buf bytes.Buffer
	tag, err := conn.PgConn().CopyTo(ctx, &buf, copySQL)
	if err != nil {
		metrics.RecordCopy("export", "error")
		return 0, fmt.Errorf("failed to export for object %s: %w", key, err)
	}

	if err := store.Upload(ctx, key, &buf); err != nil {
		metrics.RecordCopy("export", "error")
		return 0, err
	}
	metrics.RecordCopy("export", "success")
	return tag.RowsAffected(), nil
}

// copyFromSession is the slice of a connection that staged loads use.
type copyFromSession interface {
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)
}

// TableToCSVLoad writes a table to a CSV file and bulk-loads it into an
// existing database table. The staged CSV is removed if the load fails.
func (r *Runner) TableToCSVLoad(ctx context.Context, tbl *table.Table, csvPath, tableName string) error {
	if err := tbl.SaveCSV(csvPath); err != nil {
		return err
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	return loadStagedCSV(ctx, conn.PgConn(), csvPath, tableName)
}

// loadStagedCSV copies a staged CSV file into tableName, removing the file
// when the copy fails.
func loadStagedCSV(ctx context.Context, sess copyFromSession, csvPath, tableName string) error {
	l := logger.FromContext(ctx)

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open staged CSV %s: %w", csvPath, err)
	}
	defer f.Close()

	copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true)",
		pgx.Identifier{tableName}.Sanitize())
	tag, err := sess.CopyFrom(ctx, f, copySQL)
	if err != nil {
		metrics.RecordCopy("import", "error")
		_ = os.Remove(csvPath)
		return fmt.Errorf("failed to load staged CSV into %s: %w", tableName, err)
	}

	metrics.RecordCopy("import", "success")
	l.Info().Str("table", tableName).Int64("rows", tag.RowsAffected()).Msg("staged CSV loaded")
	return nil
}
