package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	ok := map[string]string{
		"12.34":       "12.34",
		"12,34":       "12.34",
		"0":           "0",
		"$1,234.50":   "1234.5",
		"1.234,50":    "1234.5",
		"€1.234,5":    "1234.5",
		"12.345,67":   "12345.67",
		"1,234,567.8": "1234567.8",
		"€ 7":         "7",
		" 3.5 ":       "3.5",
	}
	for in, want := range ok {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) unexpected error: %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
	bad := []string{"", "abc", "-1", "1.2.3", "1,234,50", "1.234,5,0"}
	for _, in := range bad {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) expected error", in)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"12.345", "$12.35"},
		{"-20", "-$20.00"},
	}
	for _, tc := range cases {
		if got := FormatMoney("$", decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
