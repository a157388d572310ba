package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	// Purchase is one ingested purchase row. Derived fields are filled by
	// NewPurchase and never read from input.
	Purchase struct {
		Date      Date
		Platform  string
		Product   string
		Category  string
		Quantity  int
		UnitPrice decimal.Decimal

		LineTotal decimal.Decimal
		MonthKey  string // "2006-01", sorts chronologically
		Year      int
		Quarter   int
		ISOYear   int
		ISOWeek   int
		Weekday   time.Weekday
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyPlatform   = errors.New("empty platform")
	ErrEmptyProduct    = errors.New("empty product")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrNegativePrice   = errors.New("unit price cannot be negative")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseDate accepts ISO dates, RFC 3339 timestamps and year-first slash
// dates (2024/03/15). Any time part is discarded. Day-first and
// month-first layouts are rejected since 03/04/2024 reads either way.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// DaysSince returns the whole days from earlier to d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Sub(earlier.Time).Hours() / 24)
}

// AddDays returns the date n calendar days later (or earlier when negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewPurchase builds a purchase and derives its line total and calendar
// fields. It does not validate; see Validate.
func NewPurchase(date Date, platform, product, category string, quantity int, unitPrice decimal.Decimal) Purchase {
	isoYear, isoWeek := date.ISOWeek()
	month := int(date.Month())
	return Purchase{
		Date:      date,
		Platform:  platform,
		Product:   product,
		Category:  category,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		MonthKey:  date.Format("2006-01"),
		Year:      date.Year(),
		Quarter:   (month-1)/3 + 1,
		ISOYear:   isoYear,
		ISOWeek:   isoWeek,
		Weekday:   date.Weekday(),
	}
}

func (p Purchase) Validate() error {
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(p.Platform) == "" {
		return ErrEmptyPlatform
	}
	if strings.TrimSpace(p.Product) == "" {
		return ErrEmptyProduct
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// WeekKey is the ISO year-week key, e.g. "2024-W05".
func (p Purchase) WeekKey() string {
	return fmt.Sprintf("%04d-W%02d", p.ISOYear, p.ISOWeek)
}

// MonthLabel is the localized "Month Year" label for the purchase month.
func (p Purchase) MonthLabel(locale Locale) string {
	return MonthLabel(p.Date.Month(), p.Year, locale)
}

// WeekdayName is the localized weekday name of the purchase date.
func (p Purchase) WeekdayName(locale Locale) string {
	return WeekdayName(p.Weekday, locale)
}
