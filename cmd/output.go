package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ingham-physics/auscat-util/internal/table"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
	OutputCSV   OutputFormat = "csv"
)

// Outputter renders query results and objects in the configured format
type Outputter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputter creates a new outputter with the specified format
func NewOutputter(format string) *Outputter {
	return &Outputter{
		format: OutputFormat(format),
		writer: os.Stdout,
	}
}

// PrintResult prints a tabular query result
func (o *Outputter) PrintResult(t *table.Table) error {
	switch o.format {
	case OutputTable:
		return o.printAsTable(t.Columns, t.Strings())
	case OutputJSON:
		return o.printAsJSON(t.Columns, t.Strings())
	case OutputYAML:
		return o.printAsYAML(t.Columns, t.Strings())
	case OutputCSV:
		return t.WriteCSV(o.writer)
	default:
		return fmt.Errorf("unsupported output format: %s", o.format)
	}
}

// PrintObject prints a single object in the specified format
func (o *Outputter) PrintObject(obj interface{}) error {
	switch o.format {
	case OutputJSON:
		encoder := json.NewEncoder(o.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(obj)
	default:
		encoder := yaml.NewEncoder(o.writer)
		defer encoder.Close()
		return encoder.Encode(obj)
	}
}

func (o *Outputter) printAsTable(headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		for i, cell := range cells {
			fmt.Fprint(o.writer, cell)
			if i < len(cells)-1 {
				fmt.Fprint(o.writer, strings.Repeat(" ", widths[i]-len(cell)+2))
			}
		}
		fmt.Fprint(o.writer, "\n")
	}

	writeRow(headers)
	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = strings.Repeat("-", widths[i])
	}
	writeRow(separators)
	for _, row := range rows {
		writeRow(row)
	}
	return nil
}

func (o *Outputter) printAsJSON(headers []string, rows [][]string) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rowObjects(headers, rows))
}

func (o *Outputter) printAsYAML(headers []string, rows [][]string) error {
	encoder := yaml.NewEncoder(o.writer)
	defer encoder.Close()
	return encoder.Encode(rowObjects(headers, rows))
}

func rowObjects(headers []string, rows [][]string) []map[string]interface{} {
	var objects []map[string]interface{}
	for _, row := range rows {
		obj := make(map[string]interface{})
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			}
		}
		objects = append(objects, obj)
	}
	return objects
}

// PrintSuccess prints a success message
func (o *Outputter) PrintSuccess(message string) {
	fmt.Fprintf(o.writer, "✓ %s\n", message)
}

// PrintWarning prints a warning message
func (o *Outputter) PrintWarning(message string) {
	fmt.Fprintf(o.writer, "⚠ %s\n", message)
}
