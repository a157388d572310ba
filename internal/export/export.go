// Package export writes filtered purchase tables as downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"compras/internal/core"
)

// Columns is the download schema. The first six re-ingest as input; the
// rest are derived and regenerated on import.
var Columns = []string{
	"date", "platform", "product", "category", "quantity", "unit_price",
	"line_total", "month_key", "month_label", "year", "quarter", "iso_week", "weekday",
}

// SheetName is the worksheet that holds exported rows.
const SheetName = "Compras"

func record(p core.Purchase, locale core.Locale) []string {
	return []string{
		p.Date.String(),
		p.Platform,
		p.Product,
		p.Category,
		strconv.Itoa(p.Quantity),
		p.UnitPrice.String(),
		p.LineTotal.String(),
		p.MonthKey,
		p.MonthLabel(locale),
		strconv.Itoa(p.Year),
		strconv.Itoa(p.Quarter),
		p.WeekKey(),
		p.WeekdayName(locale),
	}
}

// WriteCSV writes t as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, t core.Table, locale core.Locale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range t.Rows() {
		if err := cw.Write(record(p, locale)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes t as a single-sheet workbook with the CSV columns.
// Numeric columns are stored as numbers; dates stay ISO text so the file
// re-ingests without serial-date conversion.
func WriteXLSX(w io.Writer, t core.Table, locale core.Locale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, p := range t.Rows() {
		row := []any{
			p.Date.String(),
			p.Platform,
			p.Product,
			p.Category,
			p.Quantity,
			p.UnitPrice.InexactFloat64(),
			p.LineTotal.InexactFloat64(),
			p.MonthKey,
			p.MonthLabel(locale),
			p.Year,
			p.Quarter,
			p.WeekKey(),
			p.WeekdayName(locale),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetName, "C", "C", 40); err != nil {
		return fmt.Errorf("size product column: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
