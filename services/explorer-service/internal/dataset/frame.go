// Package dataset loads tabular files and computes the statistics shown by the explorer.
//
// Cells are kept as the strings read from the file. Each column gets a kind when the
// frame is built: numeric when every present value parses as a number, boolean when
// every present value is true or false, categorical otherwise.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindBoolean     Kind = "boolean"
	KindCategorical Kind = "categorical"
)

// missingMarkers are the cell values treated as missing
var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "NaN": {}, "nan": {}, "null": {}, "NULL": {},
	"None": {}, "#N/A": {}, "-NaN": {}, "n/a": {},
}

// IsMissing reports whether a cell holds no value
func IsMissing(v string) bool {
	_, ok := missingMarkers[v]
	return ok
}

// Frame is an in-memory table
type Frame struct {
	Columns []string
	Rows    [][]string
	kinds   []Kind
}

// NewFrame trims column names, pads short rows with missing cells and classifies columns
func NewFrame(columns []string, rows [][]string) *Frame {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == len(cols) {
			normalized[i] = row
			continue
		}
		padded := make([]string, len(cols))
		copy(padded, row)
		normalized[i] = padded
	}

	f := &Frame{Columns: cols, Rows: normalized}
	f.kinds = make([]Kind, len(cols))
	for i := range cols {
		f.kinds[i] = classify(f.column(i))
	}
	return f
}

func classify(values []string) Kind {
	present, numeric, boolean := 0, true, true
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		present++
		if _, ok := parseNumber(v); !ok {
			numeric = false
		}
		if !isBool(v) {
			boolean = false
		}
	}
	switch {
	case present == 0:
		return KindCategorical
	case numeric:
		return KindNumeric
	case boolean:
		return KindBoolean
	default:
		return KindCategorical
	}
}

func parseNumber(v string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func isBool(v string) bool {
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "false")
}

// Len returns the number of rows
func (f *Frame) Len() int { return len(f.Rows) }

// ColumnIndex finds a column by name
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Kind returns the kind of column i
func (f *Frame) Kind(i int) Kind { return f.kinds[i] }

// KindOf returns the kind of a named column
func (f *Frame) KindOf(name string) (Kind, bool) {
	i, ok := f.ColumnIndex(name)
	if !ok {
		return "", false
	}
	return f.kinds[i], true
}

// ColumnsOfKind lists column names with the given kind, in frame order
func (f *Frame) ColumnsOfKind(kind Kind) []string {
	names := make([]string, 0)
	for i, c := range f.Columns {
		if f.kinds[i] == kind {
			names = append(names, c)
		}
	}
	return names
}

// DType returns a pandas style dtype name: int64, float64, bool or object
func (f *Frame) DType(i int) string {
	switch f.kinds[i] {
	case KindNumeric:
		for _, v := range f.column(i) {
			if IsMissing(v) {
				return "float64"
			}
			n, _ := parseNumber(v)
			if n != float64(int64(n)) || strings.ContainsAny(v, ".eE") {
				return "float64"
			}
		}
		return "int64"
	case KindBoolean:
		return "bool"
	default:
		return "object"
	}
}

func (f *Frame) column(i int) []string {
	values := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		values[r] = row[i]
	}
	return values
}

// Values returns the cells of a named column
func (f *Frame) Values(name string) ([]string, bool) {
	i, ok := f.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	return f.column(i), true
}

// Numbers returns the present values of a numeric column
func (f *Frame) Numbers(name string) ([]float64, bool) {
	i, ok := f.ColumnIndex(name)
	if !ok || f.kinds[i] != KindNumeric {
		return nil, false
	}
	return f.numbers(i), true
}

func (f *Frame) numbers(i int) []float64 {
	out := make([]float64, 0, len(f.Rows))
	for _, row := range f.Rows {
		if IsMissing(row[i]) {
			continue
		}
		if n, ok := parseNumber(row[i]); ok {
			out = append(out, n)
		}
	}
	return out
}

// Number parses one cell of a numeric column. ok is false for missing cells.
func (f *Frame) Number(row, col int) (float64, bool) {
	v := f.Rows[row][col]
	if IsMissing(v) {
		return 0, false
	}
	return parseNumber(v)
}

// Select returns a frame with the rows at the given indexes
func (f *Frame) Select(indexes []int) *Frame {
	rows := make([][]string, len(indexes))
	for i, idx := range indexes {
		rows[i] = f.Rows[idx]
	}
	return &Frame{Columns: f.Columns, Rows: rows, kinds: f.kinds}
}

// Head returns at most n rows
func (f *Frame) Head(n int) *Frame {
	if n < 0 || n >= len(f.Rows) {
		return f
	}
	return &Frame{Columns: f.Columns, Rows: f.Rows[:n], kinds: f.kinds}
}

// Records returns the rows as column name to cell maps, with missing cells as nil
func (f *Frame) Records() []map[string]any {
	records := make([]map[string]any, len(f.Rows))
	for r, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for i, c := range f.Columns {
			if IsMissing(row[i]) {
				rec[c] = nil
				continue
			}
			switch f.kinds[i] {
			case KindNumeric:
				n, _ := parseNumber(row[i])
				rec[c] = n
			case KindBoolean:
				rec[c] = strings.EqualFold(row[i], "true")
			default:
				rec[c] = row[i]
			}
		}
		records[r] = rec
	}
	return records
}

// TypeCounts counts columns per dtype
func (f *Frame) TypeCounts() map[string]int {
	counts := make(map[string]int)
	for i := range f.Columns {
		counts[f.DType(i)]++
	}
	return counts
}

// Numeric parses a present cell as a finite number
func Numeric(v string) (float64, bool) {
	if IsMissing(v) {
		return 0, false
	}
	return parseNumber(v)
}
