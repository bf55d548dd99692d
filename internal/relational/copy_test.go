package relational

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingham-physics/auscat-util/internal/table"
)

// stubCopySession records the COPY command it receives and fails on demand.
type stubCopySession struct {
	sql string
	err error
}

func (s *stubCopySession) CopyFrom(_ context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	s.sql = sql
	if s.err != nil {
		return pgconn.CommandTag{}, s.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("COPY 2"), nil
}

func stagedFixture(t *testing.T) string {
	t.Helper()
	tbl := table.New("id", "label")
	require.NoError(t, tbl.AppendRow("1", "alpha"))
	require.NoError(t, tbl.AppendRow("2", nil))

	csvPath := filepath.Join(t.TempDir(), "staged.csv")
	require.NoError(t, tbl.SaveCSV(csvPath))
	return csvPath
}

func TestLoadStagedCSVRemovesFileOnFailure(t *testing.T) {
	csvPath := stagedFixture(t)
	sess := &stubCopySession{err: errors.New("relation does not exist")}

	err := loadStagedCSV(context.Background(), sess, csvPath, "measurements")
	require.Error(t, err)
	assert.ErrorContains(t, err, "measurements")

	_, statErr := os.Stat(csvPath)
	assert.True(t, os.IsNotExist(statErr), "staged CSV should be removed after a failed load")
}

func TestLoadStagedCSVKeepsFileOnSuccess(t *testing.T) {
	csvPath := stagedFixture(t)
	sess := &stubCopySession{}

	require.NoError(t, loadStagedCSV(context.Background(), sess, csvPath, "measurements"))
	assert.Equal(t, `COPY "measurements" FROM STDIN WITH (FORMAT csv, HEADER true)`, sess.sql)

	_, statErr := os.Stat(csvPath)
	assert.NoError(t, statErr)
}
