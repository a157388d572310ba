package metrics

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"compras/internal/core"
)

func buy(date core.Date, platform, category, product string, qty int, price string) core.Purchase {
	return core.NewPurchase(date, platform, product, category, qty, decimal.RequireFromString(price))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(core.NewTable(nil))
	if s.Count != 0 || !s.Total.IsZero() || !s.Mean.IsZero() || s.Median != 0 || s.StdDev != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if s.MostExpensive != nil || s.LeastExpensive != nil {
		t.Fatalf("expected nil extremes on empty table")
	}
	if s.SpanDays != 0 || !s.FirstDate.IsZero() {
		t.Fatalf("expected zero dates, got %+v", s)
	}
}

func TestSummarizeSingleRow(t *testing.T) {
	tbl := core.NewTable([]core.Purchase{buy(core.NewDate(2024, 5, 1), "A", "C", "x", 2, "7.5")})
	s := Summarize(tbl)
	if s.Count != 1 || !s.Total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.StdDev != 0 {
		t.Fatalf("StdDev = %v, want 0 for one row", s.StdDev)
	}
	if s.Median != 15 || s.MostExpensive == nil || s.MostExpensive.Product != "x" {
		t.Fatalf("unexpected median/extreme %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	tbl := core.NewTable([]core.Purchase{
		buy(core.NewDate(2024, 1, 1), "Amazon", "Tech", "Teclado", 1, "40"),
		buy(core.NewDate(2024, 1, 11), "Shein", "Ropa", "Camisa", 2, "10"),
		buy(core.NewDate(2024, 1, 21), "Amazon", "Tech", "Ratón", 1, "20"),
		buy(core.NewDate(2024, 1, 31), "Temu", "Hogar", "Taza", 4, "5"),
	})
	s := Summarize(tbl)

	if !s.Total.Equal(decimal.NewFromInt(100)) || !s.Mean.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("total/mean = %s/%s", s.Total, s.Mean)
	}
	if s.Median != 20 {
		t.Fatalf("Median = %v, want 20", s.Median)
	}
	// Sample std dev of 40, 20, 20, 20.
	if math.Abs(s.StdDev-10) > 1e-9 {
		t.Fatalf("StdDev = %v, want 10", s.StdDev)
	}
	if s.MostExpensive.Product != "Teclado" {
		t.Fatalf("most expensive = %q", s.MostExpensive.Product)
	}
	// Ties keep the earliest row.
	if s.LeastExpensive.Product != "Camisa" {
		t.Fatalf("least expensive = %q", s.LeastExpensive.Product)
	}
	if s.SpanDays != 30 || s.Platforms != 3 || s.Categories != 3 || s.Products != 4 || s.Units != 8 {
		t.Fatalf("unexpected counts %+v", s)
	}
}

func TestByPlatformOrdering(t *testing.T) {
	d := core.NewDate(2024, 2, 1)
	tbl := core.NewTable([]core.Purchase{
		buy(d, "Temu", "X", "a", 1, "50"),
		buy(d, "Amazon", "X", "b", 1, "30"),
		buy(d, "Amazon", "Y", "c", 1, "20"),
		buy(d, "Shein", "Y", "d", 1, "10"),
	})
	got := ByPlatform(tbl)
	want := []string{"Amazon", "Temu", "Shein"}
	if len(got) != len(want) {
		t.Fatalf("groups = %d", len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("group %d = %q, want %q", i, got[i].Name, name)
		}
	}
	amazon := got[0]
	if amazon.Count != 2 || !amazon.Mean.Equal(decimal.NewFromInt(25)) ||
		!amazon.Max.Equal(decimal.NewFromInt(30)) || !amazon.Min.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected amazon group %+v", amazon)
	}
	if math.Abs(amazon.Share-45.4545) > 0.001 {
		t.Fatalf("Share = %v", amazon.Share)
	}

	cats := ByCategory(tbl)
	if cats[0].Name != "X" || cats[1].Name != "Y" {
		t.Fatalf("category order = %v", cats)
	}
}

func TestMonthlyTotalsChronological(t *testing.T) {
	tbl := core.NewTable([]core.Purchase{
		buy(core.NewDate(2024, 12, 1), "A", "C", "x", 1, "1"),
		buy(core.NewDate(2025, 1, 3), "A", "C", "x", 1, "2"),
		buy(core.NewDate(2024, 2, 1), "A", "C", "x", 1, "3"),
		buy(core.NewDate(2024, 2, 9), "A", "C", "x", 1, "4"),
	})
	got := MonthlyTotals(tbl)
	keys := []string{"2024-02", "2024-12", "2025-01"}
	for i, k := range keys {
		if got[i].Name != k {
			t.Fatalf("month %d = %q, want %q", i, got[i].Name, k)
		}
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(7)) || got[0].Count != 2 {
		t.Fatalf("february = %+v", got[0])
	}
}
