package relational

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ingham-physics/auscat-util/internal/table"
)

func TestCreateTableSQL(t *testing.T) {
	tests := []struct {
		name    string
		ident   pgx.Identifier
		columns []string
		want    string
	}{
		{
			name:    "plain table",
			ident:   pgx.Identifier{"results"},
			columns: []string{"id", "value"},
			want:    `CREATE TABLE "results" ("id" TEXT, "value" TEXT)`,
		},
		{
			name:    "schema qualified",
			ident:   pgx.Identifier{"staging", "results"},
			columns: []string{"id"},
			want:    `CREATE TABLE "staging"."results" ("id" TEXT)`,
		},
		{
			name:    "column needing quoting",
			ident:   pgx.Identifier{"t"},
			columns: []string{`weird"name`},
			want:    `CREATE TABLE "t" ("weird""name" TEXT)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, createTableSQL(tt.ident, tt.columns))
		})
	}
}

func TestTextRows(t *testing.T) {
	tbl := table.New("a", "b")
	_ = tbl.AppendRow(1, "x")
	_ = tbl.AppendRow(nil, 2.5)

	rows := textRows(tbl)
	assert.Equal(t, [][]any{{"1", "x"}, {nil, "2.5"}}, rows)
}

func TestPgDetail(t *testing.T) {
	pgErr := &pgconn.PgError{
		Severity: "ERROR",
		Code:     "42P01",
		Message:  `relation "nope" does not exist`,
	}
	detail := PgDetail(pgErr)
	assert.Contains(t, detail, "42P01")
	assert.Contains(t, detail, "does not exist")

	wrapped := errors.Join(errors.New("outer"), pgErr)
	assert.Contains(t, PgDetail(wrapped), "42P01")

	assert.Equal(t, "plain failure", PgDetail(errors.New("plain failure")))
	assert.Equal(t, "", PgDetail(nil))
}

func TestNewRunnerOptions(t *testing.T) {
	r := NewRunner(nil)
	assert.Equal(t, 2, r.retryCfg.MaxRetries)

	r = NewRunner(nil, WithRetryConfig(r.retryCfg.WithMaxRetries(0)))
	assert.Equal(t, 0, r.retryCfg.MaxRetries)
}
