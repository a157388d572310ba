package ingest

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"compras/internal/core"
)

// Canonical column names. Errors name fields with these.
const (
	ColDate      = "fecha"
	ColPlatform  = "plataforma"
	ColProduct   = "producto"
	ColCategory  = "categoria"
	ColQuantity  = "cantidad"
	ColUnitPrice = "precio"
)

// columnAliases maps every accepted (normalized) header to its canonical
// column. Anything else, including exported derived columns, is ignored.
var columnAliases = map[string]string{
	"fecha":      ColDate,
	"date":       ColDate,
	"plataforma": ColPlatform,
	"platform":   ColPlatform,
	"producto":   ColProduct,
	"product":    ColProduct,
	"categoria":  ColCategory,
	"category":   ColCategory,
	"cantidad":   ColQuantity,
	"quantity":   ColQuantity,
	"qty":        ColQuantity,
	"precio":     ColUnitPrice,
	"unit_price": ColUnitPrice,
	"price":      ColUnitPrice,
}

// rawRecord is one input row before type coercion.
type rawRecord struct {
	Date      string `col:"fecha" validate:"required"`
	Platform  string `col:"plataforma" validate:"required"`
	Product   string `col:"producto" validate:"required"`
	Category  string `col:"categoria" validate:"required"`
	Quantity  string `col:"cantidad" validate:"required"`
	UnitPrice string `col:"precio" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("col")
	})
	return v
}

// normalizeHeader lowercases, trims, strips a UTF-8 BOM and folds the
// accents used by the Spanish headers.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", " ", "_").Replace(h)
	return h
}

func canonicalColumn(h string) (string, bool) {
	c, ok := columnAliases[normalizeHeader(h)]
	return c, ok
}

// decoder turns raw string records into purchases.
type decoder struct {
	// serialDates accepts spreadsheet serial day numbers as dates.
	serialDates bool
}

func (d decoder) set(rec *rawRecord, col, value string) {
	value = strings.TrimSpace(value)
	switch col {
	case ColDate:
		rec.Date = value
	case ColPlatform:
		rec.Platform = value
	case ColProduct:
		rec.Product = value
	case ColCategory:
		rec.Category = value
	case ColQuantity:
		rec.Quantity = value
	case ColUnitPrice:
		rec.UnitPrice = value
	}
}

func (d decoder) purchase(row int, rec rawRecord) (core.Purchase, error) {
	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return core.Purchase{}, &core.MalformedInputError{
				Row:    row,
				Field:  verrs[0].Field(),
				Reason: "required field is missing",
			}
		}
		return core.Purchase{}, &core.MalformedInputError{Row: row, Reason: err.Error(), Err: err}
	}

	date, err := d.date(rec.Date)
	if err != nil {
		return core.Purchase{}, &core.MalformedInputError{Row: row, Field: ColDate, Reason: "unparseable date " + strconv.Quote(rec.Date), Err: err}
	}
	qty, err := parseQuantity(rec.Quantity)
	if err != nil {
		return core.Purchase{}, &core.MalformedInputError{Row: row, Field: ColQuantity, Reason: "quantity must be a positive integer, got " + strconv.Quote(rec.Quantity), Err: err}
	}
	price, err := core.ParseAmount(rec.UnitPrice)
	if err != nil {
		return core.Purchase{}, &core.MalformedInputError{Row: row, Field: ColUnitPrice, Reason: "invalid unit price " + strconv.Quote(rec.UnitPrice), Err: err}
	}

	return core.NewPurchase(date, rec.Platform, rec.Product, rec.Category, qty, price), nil
}

func (d decoder) date(s string) (core.Date, error) {
	date, err := core.ParseDate(s)
	if err == nil || !d.serialDates {
		return date, err
	}
	serial, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return core.Date{}, err
	}
	t, terr := excelize.ExcelDateToTime(serial, false)
	if terr != nil {
		return core.Date{}, err
	}
	return core.DateOf(t.In(time.UTC)), nil
}

// parseQuantity accepts integral values, including "2.0" as produced by
// JSON numbers and spreadsheets.
func parseQuantity(s string) (int, error) {
	q, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, core.ErrInvalidQuantity
	}
	if !q.IsInteger() || !q.IsPositive() || q.GreaterThan(decimal.NewFromInt(1<<31-1)) {
		return 0, core.ErrInvalidQuantity
	}
	return int(q.IntPart()), nil
}

// ParseRows decodes a header row plus data rows, the shape shared by
// CSV, spreadsheets and the Sheets API. Rows that are entirely blank are
// skipped. The first malformed row aborts the parse.
func ParseRows(header []string, rows [][]string) (core.Table, error) {
	return decoder{}.rows(header, rows)
}

func (d decoder) rows(header []string, rows [][]string) (core.Table, error) {
	cols := make([]string, len(header))
	present := make(map[string]bool)
	for i, h := range header {
		if c, ok := canonicalColumn(h); ok && !present[c] {
			cols[i] = c
			present[c] = true
		}
	}
	for _, required := range []string{ColDate, ColPlatform, ColProduct, ColCategory, ColQuantity, ColUnitPrice} {
		if !present[required] {
			return core.Table{}, &core.MalformedInputError{Field: required, Reason: "missing required column"}
		}
	}

	out := make([]core.Purchase, 0, len(rows))
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		var rec rawRecord
		for j, value := range row {
			if j < len(cols) && cols[j] != "" {
				d.set(&rec, cols[j], value)
			}
		}
		p, err := d.purchase(i+1, rec)
		if err != nil {
			return core.Table{}, err
		}
		out = append(out, p)
	}
	return core.NewTable(out), nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
