package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// csvRow gives access to one row by column name.
type csvRow struct {
	cols   map[string]int
	values []string
}

func (r csvRow) get(col string) string {
	if idx, ok := r.cols[col]; ok && idx < len(r.values) {
		return r.values[idx]
	}
	return ""
}

// readCSV reads a header-based CSV export and calls fn for every row.
// Rows that cannot be read become warnings. fold maps header names to the
// keys used with csvRow.get.
func readCSV(data []byte, required string, fold func(string) string, result *ImportResult, fn func(rowNum int, row csvRow)) error {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true // Handle malformed exports
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[fold(col)] = i
	}
	if _, ok := cols[required]; !ok {
		return fmt.Errorf("missing required column: %s", required)
	}

	rowNum := 1 // 1-indexed (header is row 1)
	for {
		rowNum++
		values, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: failed to parse: %v", rowNum, err))
			continue
		}

		if len(values) != len(header) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: column count mismatch (expected %d, got %d)",
					rowNum, len(header), len(values)))
			continue
		}

		fn(rowNum, csvRow{cols: cols, values: values})
	}
}
