package relational

import (
	"fmt"
	"os"
	"strings"
)

// SplitStatements splits a script on ";" and discards the final fragment.
// The pipeline SQL scripts end every statement with a semicolon, so the last
// fragment is the empty text after the final delimiter. Statements containing
// literal semicolons are not supported; the existing scripts rely on this
// exact behavior.
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")
	if len(parts) <= 1 {
		return nil
	}
	return parts[:len(parts)-1]
}

// FirstStatement returns everything before the first ";". Query helpers run
// only this statement; anything after the first delimiter never reaches the
// database.
func FirstStatement(script string) string {
	if i := strings.Index(script, ";"); i >= 0 {
		return script[:i]
	}
	return script
}

// ReadScript reads a SQL script file as UTF-8 text.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return string(data), nil
}
