// Package ingest turns facilities spreadsheets into room records and staff
// assignments.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFile is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Row is one spreadsheet row keyed by lower-cased header.
type Row map[string]string

// ParseFile parses a CSV or XLSX file by extension.
func ParseFile(path string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if ext == ".csv" {
		return ParseCSV(f)
	}
	return ParseXLSX(f)
}

// ParseCSV reads a CSV document with a header row.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rowsFromRecords(records), nil
}

// ParseXLSX reads the first sheet of a workbook with a header row.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Row{}, nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rowsFromRecords(records), nil
}

func rowsFromRecords(records [][]string) []Row {
	rows := []Row{}
	if len(records) == 0 {
		return rows
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, record := range records[1:] {
		row := Row{}
		empty := true
		for i, value := range record {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			value = strings.TrimSpace(value)
			if value != "" {
				empty = false
			}
			row[headers[i]] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}
