package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ErrEmpty is returned when a file has no header or no data rows
var ErrEmpty = errors.New("the uploaded file is empty")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CheckFormat reports whether Load can read files with this name
func CheckFormat(filename string) error {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".xlsx":
		return nil
	case ".xls":
		return fmt.Errorf("unsupported file format: legacy .xls files must be converted to .xlsx or .csv")
	default:
		return fmt.Errorf("unsupported file format %q: please upload CSV or Excel (.xlsx) files", ext)
	}
}

// Load reads a CSV or XLSX file. The format is chosen by the file extension.
func Load(filename string, r io.Reader) (*Frame, error) {
	if err := CheckFormat(filename); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return loadExcel(r)
	}
	return loadCSV(r)
}

func loadCSV(r io.Reader) (*Frame, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		if raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw); err != nil {
			return nil, fmt.Errorf("failed to decode csv as latin-1: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return fromRecords(records)
}

func loadExcel(r io.Reader) (*Frame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid excel file: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*Frame, error) {
	if len(records) < 2 {
		return nil, ErrEmpty
	}
	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) > len(header) {
			rec = rec[:len(header)]
		}
		rows = append(rows, rec)
	}
	return NewFrame(header, rows), nil
}
