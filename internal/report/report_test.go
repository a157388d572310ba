package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/insights"
)

func sample() core.Table {
	return core.NewTable([]core.Purchase{
		core.NewPurchase(core.NewDate(2024, 1, 5), "Amazon", "Libro", "Libros", 1, decimal.RequireFromString("20")),
		core.NewPurchase(core.NewDate(2024, 1, 9), "Temu", "Taza", "Hogar", 2, decimal.RequireFromString("3")),
		core.NewPurchase(core.NewDate(2024, 2, 1), "Amazon", "Cable USB", "Electrónica", 1, decimal.RequireFromString("9.99")),
	})
}

func TestWriteSpanish(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Input{
		Source:   "compras.csv",
		Table:    sample(),
		Settings: insights.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Dashboard de Compras Online", "compras.csv", "sin filtros", "Gasto total", "$35.99", "Amazon", "Temu", "Electrónica", "Patrones"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Errorf("bold markers leaked into output:\n%s", out)
	}
}

func TestWriteEmptySelection(t *testing.T) {
	settings := insights.DefaultSettings()
	settings.Locale = core.LocaleEN
	sel := filter.Selection{Platform: "Shein"}

	var buf bytes.Buffer
	if err := Write(&buf, Input{Source: "x.json", Selection: sel, Table: filter.Apply(sample(), sel), Settings: settings}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No purchases match") || !strings.Contains(out, "Shein") {
		t.Fatalf("unexpected empty report:\n%s", out)
	}
	if strings.Contains(out, "Key Metrics") {
		t.Fatalf("metrics rendered for an empty table:\n%s", out)
	}
}

func TestDescribeSelection(t *testing.T) {
	sel := filter.Selection{
		Category: "Hogar",
		Start:    core.NewDate(2024, 1, 1),
		End:      core.NewDate(2024, 1, 31),
	}
	if got := describeSelection(sel, labelsEN); got != "Hogar · 2024-01-01 → 2024-01-31" {
		t.Fatalf("describeSelection = %q", got)
	}
	// One-sided ranges are not a restriction.
	if got := describeSelection(filter.Selection{Start: core.NewDate(2024, 1, 1)}, labelsEN); got != "no filters" {
		t.Fatalf("one-sided describeSelection = %q", got)
	}
}

func TestEmphasize(t *testing.T) {
	cases := []struct{ in, contains, absent string }{
		{"plain text", "plain text", "**"},
		{"gasto en **Amazon** alto", "Amazon", "**"},
		{"unbalanced **marker", "**marker", ""},
	}
	for _, tc := range cases {
		got := emphasize(tc.in)
		if !strings.Contains(got, tc.contains) {
			t.Errorf("emphasize(%q) = %q, want %q inside", tc.in, got, tc.contains)
		}
		if tc.absent != "" && strings.Contains(got, tc.absent) {
			t.Errorf("emphasize(%q) = %q, should not contain %q", tc.in, got, tc.absent)
		}
	}
}
