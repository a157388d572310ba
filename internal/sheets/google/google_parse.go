package google

import (
	"fmt"
	"strings"
)

// splitValues turns a Sheets values matrix into a header and data rows.
// Leading blank rows and comment rows starting with "#" are skipped; the
// first remaining row is the header.
func splitValues(values [][]interface{}) ([]string, [][]string) {
	var header []string
	rows := make([][]string, 0, len(values))
	for _, raw := range values {
		row := toStrings(raw)
		if header == nil {
			if isBlank(row) || strings.HasPrefix(safeGet(row, 0), "#") {
				continue
			}
			header = row
			continue
		}
		rows = append(rows, row)
	}
	return header, rows
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// sheetRange quotes sheet names that contain spaces or punctuation.
func sheetRange(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!-") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return fmt.Sprintf("%s!%s", sheet, cells)
}
