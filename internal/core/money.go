// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals; floats only appear at the display and
// statistics boundary.
package core

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a price string to an exact decimal.
//
// It accepts dot (12.34) and comma (12,34) decimal separators and strips
// a leading currency symbol. When both separators appear, the last one is
// the decimal point and the other groups thousands ("1,234.50",
// "1.234,50"). Negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("12,34")     -> 12.34
//	ParseAmount("$1,234.50") -> 1234.5
//	ParseAmount("1.234,50")  -> 1234.5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£ ")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	return d, nil
}

// FormatMoney renders an amount as "$1,234.50" with the given symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	f, _ := amount.Round(2).Float64()
	return sign + symbol + humanize.FormatFloat("#,###.##", f)
}

// FormatFloatMoney is FormatMoney for values already reduced to float.
func FormatFloatMoney(symbol string, f float64) string {
	return FormatMoney(symbol, decimal.NewFromFloat(f))
}
