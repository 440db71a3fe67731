package document

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX returns every non-empty row of every sheet, cells separated by spaces.
func ReadXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			if isBlank(row) {
				continue
			}
			b.WriteString(strings.Join(row, " "))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// ReadTable reads a sheet as records keyed by the header row.
// The first non-empty row is the header. Columns with a blank or "Unnamed"
// header and rows with no values are dropped. An empty sheet name selects
// the first sheet.
func ReadTable(path, sheet string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrUnsupportedFormat, path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return tableFromRows(rows), nil
}

func tableFromRows(rows [][]string) []map[string]string {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil
	}

	header := rows[start]
	var table []map[string]string
	for _, row := range rows[start+1:] {
		record := make(map[string]string)
		hasValue := false
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || strings.HasPrefix(name, "Unnamed") {
				continue
			}
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if value != "" {
				hasValue = true
			}
			record[name] = value
		}
		if hasValue {
			table = append(table, record)
		}
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
