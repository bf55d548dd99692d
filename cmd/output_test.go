package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingham-physics/auscat-util/internal/table"
)

func resultFixture(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New("id", "label")
	require.NoError(t, tbl.AppendRow("1", "alpha"))
	require.NoError(t, tbl.AppendRow("2", nil))
	return tbl
}

func TestPrintResultCSV(t *testing.T) {
	var buf bytes.Buffer
	o := &Outputter{format: OutputCSV, writer: &buf}

	require.NoError(t, o.PrintResult(resultFixture(t)))
	assert.Equal(t, "id,label\n1,alpha\n2,\n", buf.String())
}

func TestPrintResultJSON(t *testing.T) {
	var buf bytes.Buffer
	o := &Outputter{format: OutputJSON, writer: &buf}

	require.NoError(t, o.PrintResult(resultFixture(t)))
	assert.JSONEq(t, `[{"id":"1","label":"alpha"},{"id":"2","label":""}]`, buf.String())
}

func TestPrintResultTable(t *testing.T) {
	var buf bytes.Buffer
	o := &Outputter{format: OutputTable, writer: &buf}

	require.NoError(t, o.PrintResult(resultFixture(t)))
	out := buf.String()
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "--")
}

func TestPrintResultUnknownFormat(t *testing.T) {
	o := &Outputter{format: OutputFormat("xml"), writer: &bytes.Buffer{}}
	assert.Error(t, o.PrintResult(resultFixture(t)))
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	o := &Outputter{format: OutputTable, writer: &buf}

	o.PrintSuccess("loaded 2 rows into measurements")
	o.PrintWarning("file skipped")
	assert.Equal(t, "✓ loaded 2 rows into measurements\n⚠ file skipped\n", buf.String())
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, ValidateConfig(cfg))

	cfg.OutputFormat = "xml"
	assert.Error(t, ValidateConfig(cfg))

	cfg = DefaultConfig()
	cfg.LogLevel = "verbose"
	assert.Error(t, ValidateConfig(cfg))
}
