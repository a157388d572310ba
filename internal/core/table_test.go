package core

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func purchaseOn(date Date, platform, product, category string) Purchase {
	return NewPurchase(date, platform, product, category, 1, decimal.NewFromInt(10))
}

func TestNewTableSortsStableByDate(t *testing.T) {
	rows := []Purchase{
		purchaseOn(NewDate(2024, 3, 1), "A", "late", "X"),
		purchaseOn(NewDate(2024, 1, 1), "A", "first-same-day", "X"),
		purchaseOn(NewDate(2024, 1, 1), "B", "second-same-day", "Y"),
	}
	tbl := NewTable(rows)
	got := tbl.Rows()
	want := []string{"first-same-day", "second-same-day", "late"}
	for i, name := range want {
		if got[i].Product != name {
			t.Fatalf("row %d = %q, want %q", i, got[i].Product, name)
		}
	}
	if !tbl.MinDate().Equal(NewDate(2024, 1, 1).Time) || !tbl.MaxDate().Equal(NewDate(2024, 3, 1).Time) {
		t.Fatalf("min/max = %v/%v", tbl.MinDate(), tbl.MaxDate())
	}
}

func TestTableIsImmutable(t *testing.T) {
	src := []Purchase{purchaseOn(NewDate(2024, 1, 1), "A", "x", "X")}
	tbl := NewTable(src)
	src[0].Product = "mutated"

	rows := tbl.Rows()
	rows[0].Product = "also mutated"

	if tbl.Rows()[0].Product != "x" {
		t.Fatalf("table changed through an alias: %q", tbl.Rows()[0].Product)
	}
}

func TestTableFilterAndDistinct(t *testing.T) {
	tbl := NewTable([]Purchase{
		purchaseOn(NewDate(2024, 1, 1), "Shein", "a", "Ropa"),
		purchaseOn(NewDate(2024, 1, 2), "Amazon", "b", "Tech"),
		purchaseOn(NewDate(2024, 1, 3), "Amazon", "a", "Ropa"),
	})
	amazon := tbl.Filter(func(p Purchase) bool { return p.Platform == "Amazon" })
	if amazon.Len() != 2 || tbl.Len() != 3 {
		t.Fatalf("filter len = %d, source len = %d", amazon.Len(), tbl.Len())
	}
	if got := tbl.Platforms(); !reflect.DeepEqual(got, []string{"Amazon", "Shein"}) {
		t.Fatalf("platforms = %v", got)
	}
	if got := tbl.Categories(); !reflect.DeepEqual(got, []string{"Ropa", "Tech"}) {
		t.Fatalf("categories = %v", got)
	}
	if got := tbl.Products(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("products = %v", got)
	}
}

func TestEmptyTable(t *testing.T) {
	var tbl Table
	if !tbl.IsEmpty() || tbl.Len() != 0 {
		t.Fatalf("zero table should be empty")
	}
	if !tbl.MinDate().IsEmpty() || !tbl.MaxDate().IsEmpty() {
		t.Fatalf("empty table dates should be zero")
	}
	if len(tbl.Platforms()) != 0 {
		t.Fatalf("expected no platforms")
	}
}
