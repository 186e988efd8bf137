// Package report renders handler output into bounded, human-readable text.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRows is the hard cap on rendered rows; the rest is summarized in one line.
const MaxRows = 20

// FieldSeparator joins the cells of one row.
const FieldSeparator = " | "

type resultKind int

const (
	kindEmpty resultKind = iota
	kindText
	kindNumber
	kindRows
)

// Row is one ordered tuple of already formatted cells.
type Row []string

// Result is what a query handler hands back: text, a number, or rows.
type Result struct {
	kind     resultKind
	text     string
	number   float64
	integral bool
	rows     []Row
}

func Empty() Result           { return Result{} }
func Text(s string) Result    { return Result{kind: kindText, text: s} }
func Int(n int) Result        { return Result{kind: kindNumber, number: float64(n), integral: true} }
func Float(v float64) Result  { return Result{kind: kindNumber, number: v} }
func Rows(rows ...Row) Result { return Result{kind: kindRows, rows: rows} }

// IsEmpty reports the falsy cases: nothing, blank text, zero, or no rows.
func (r Result) IsEmpty() bool {
	switch r.kind {
	case kindText:
		return r.text == ""
	case kindNumber:
		return r.number == 0
	case kindRows:
		return len(r.rows) == 0
	default:
		return true
	}
}

// Format renders r under label.
func Format(r Result, label string) string {
	if r.IsEmpty() {
		return "No results found for: " + label
	}
	switch r.kind {
	case kindText:
		return r.text
	case kindNumber:
		if r.integral {
			return label + ": " + strconv.FormatInt(int64(r.number), 10)
		}
		return label + ": " + Decimal(r.number)
	default:
		return formatRows(r.rows, label)
	}
}

func formatRows(rows []Row, label string) string {
	shown := rows
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	lines := make([]string, 0, len(shown)+3)
	lines = append(lines, fmt.Sprintf("📊 **%s**", label), "")
	for i, row := range shown {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.Join(row, FieldSeparator)))
	}
	if extra := len(rows) - MaxRows; extra > 0 {
		lines = append(lines, fmt.Sprintf("\n... and %d more results", extra))
	}
	return strings.Join(lines, "\n")
}

// Decimal prints v in its shortest form but always with a fractional part,
// so 40 reads "40.0" and 12.345 reads "12.345".
func Decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
