package sanitize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transformation = `<?xml version="1.0" encoding="UTF-8"?>
<transformation>
  <info>
    <name>load_patients</name>
  </info>
  <connection>
    <name>warehouse</name>
    <server>db.example.org</server>
    <username>loader</username>
    <password>Encrypted 2be98afc</password>
  </connection>
  <step>
    <name>Table input</name>
    <type>TableInput</type>
  </step>
</transformation>`

func writeProjectFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestSanitizeFileRemovesConnection(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "load.ktr", transformation)

	removed, err := SanitizeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.NotContains(t, out, "<connection>")
	assert.NotContains(t, out, "db.example.org")
	// siblings survive untouched
	assert.Contains(t, out, "<name>load_patients</name>")
	assert.Contains(t, out, "<type>TableInput</type>")
}

func TestSanitizeFileAnyNamespace(t *testing.T) {
	doc := `<job xmlns:p="http://pentaho.example">
  <p:connection><server>secret</server></p:connection>
  <entries><entry><name>start</name></entry></entries>
</job>`
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "job.kjb", doc)

	removed, err := SanitizeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "<name>start</name>")
}

func TestSanitizeFileNested(t *testing.T) {
	doc := `<transformation><step><connection>inner</connection></step></transformation>`
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "nested.ktr", doc)

	removed, err := SanitizeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestSanitizeWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "a.ktr", transformation)
	writeProjectFile(t, dir, "b.kjb", transformation)
	writeProjectFile(t, dir, "notes.txt", "leave me alone")
	other := t.TempDir()
	writeProjectFile(t, other, "c.ktr", `<transformation><info/></transformation>`)

	report, err := Sanitize(context.Background(), []string{dir, other})
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesScanned)
	assert.Equal(t, 3, report.FilesRewritten)
	assert.Equal(t, 2, report.ElementsRemoved)

	// non-project files are never touched
	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "leave me alone", string(data))
}

func TestSanitizeMissingDirectory(t *testing.T) {
	_, err := Sanitize(context.Background(), []string{filepath.Join(t.TempDir(), "gone")})
	assert.Error(t, err)
}
