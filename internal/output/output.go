// Package output formats command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Table writes aligned columns to w.
type Table struct {
	writer *tabwriter.Writer
}

// NewTable creates a table writer.
func NewTable(w io.Writer) *Table {
	return &Table{writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// Header writes the header row.
func (t *Table) Header(columns ...string) {
	t.Row(columns...)
}

// Row writes one row.
func (t *Table) Row(values ...string) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(t.writer, "\t")
		}
		fmt.Fprint(t.writer, v)
	}
	fmt.Fprintln(t.writer)
}

// Flush writes buffered output.
func (t *Table) Flush() error {
	return t.writer.Flush()
}

// JSONResponse is the standard --json output envelope.
type JSONResponse struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// JSON prints data in the standard envelope.
func JSON(data any, warnings []string, err error) {
	resp := JSONResponse{
		Success:  err == nil,
		Data:     data,
		Warnings: warnings,
	}
	if err != nil {
		resp.Error = err.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(resp); encErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", encErr)
		os.Exit(1)
	}
}

// Success prints a success message with a checkmark.
func Success(message string) {
	fmt.Printf("✓ %s\n", message)
}

// Warning prints an advisory to stderr.
func Warning(message string) {
	fmt.Fprintf(os.Stderr, "⚠ %s\n", message)
}

// Error prints an error message to stderr.
func Error(message string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", message)
}

// Dash substitutes "-" for empty values in table cells.
func Dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
