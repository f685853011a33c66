package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Format selects the Formatter encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat maps a flag or config value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	if format == "" {
		format = FormatTable
	}
	return &Formatter{writer: writer, format: format}
}

// FormatRecords writes a list of records.
func (f *Formatter) FormatRecords(records []RecordDTO) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(records)
	case FormatYAML:
		return f.encodeYAML(records)
	default:
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{r.ID, r.Name})
		}
		return f.table([]string{"ID", "NAME"}, rows)
	}
}

// FormatResults writes the outcome of a batch run.
func (f *Formatter) FormatResults(results []ResultDTO) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(results)
	case FormatYAML:
		return f.encodeYAML(results)
	default:
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{strconv.Itoa(r.Line), r.Op, resultSummary(r)})
		}
		return f.table([]string{"LINE", "OP", "RESULT"}, rows)
	}
}

func resultSummary(r ResultDTO) string {
	switch {
	case r.Failed():
		return "error: " + r.Error
	case r.Record != nil:
		return r.Record.ID + " " + r.Record.Name
	case r.Op == "list":
		parts := make([]string, 0, len(r.Records))
		for _, rec := range r.Records {
			parts = append(parts, rec.ID+" "+rec.Name)
		}
		if len(parts) == 0 {
			return "(no patients)"
		}
		return strings.Join(parts, ", ")
	case r.ID != "":
		return r.ID
	default:
		return "ok"
	}
}

func (f *Formatter) encodeJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) encodeYAML(v any) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// table writes left-aligned columns sized by display width.
func (f *Formatter) table(header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteByte('\n')
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}
