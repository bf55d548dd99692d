// Package sanitize strips connection credentials out of Pentaho data
// integration project files before they are committed to version control.
package sanitize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/ingham-physics/auscat-util/internal/logger"
	"github.com/ingham-physics/auscat-util/internal/metrics"
)

// projectExtensions are the Pentaho file types that embed connection blocks.
var projectExtensions = []string{".ktr", ".kjb"}

// Report summarizes one sanitize pass.
type Report struct {
	FilesScanned    int
	FilesRewritten  int
	ElementsRemoved int
}

// Sanitize walks each directory, and for every Pentaho project file removes
// all connection elements in any namespace, rewriting the file in place. The
// edit is destructive; no backup is taken.
func Sanitize(ctx context.Context, dirs []string) (Report, error) {
	l := logger.FromContext(ctx)

	var report Report
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return report, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isProjectFile(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			report.FilesScanned++

			removed, err := SanitizeFile(path)
			if err != nil {
				return report, err
			}
			report.FilesRewritten++
			report.ElementsRemoved += removed

			l.Info().Str("file", path).Int("removed", removed).Msg("project file sanitized")
		}
	}
	return report, nil
}

// SanitizeFile removes every connection element from one project file and
// rewrites it at its original path. Returns the number of elements removed.
// The file is rewritten even when nothing matched, as the pipelines expect.
func SanitizeFile(path string) (int, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	removed := stripConnections(&doc.Element)

	if err := doc.WriteToFile(path); err != nil {
		return removed, fmt.Errorf("failed to rewrite %s: %w", path, err)
	}

	if removed > 0 {
		metrics.FilesSanitized.Inc()
	}
	return removed, nil
}

// stripConnections removes child elements whose local name is "connection",
// in any namespace, recursing into everything that remains.
func stripConnections(el *etree.Element) int {
	removed := 0

	var doomed []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == "connection" {
			doomed = append(doomed, child)
		}
	}
	for _, child := range doomed {
		el.RemoveChild(child)
		removed++
	}

	for _, child := range el.ChildElements() {
		removed += stripConnections(child)
	}
	return removed
}

func isProjectFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range projectExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
