package filter

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"compras/internal/core"
)

func sampleTable() core.Table {
	mk := func(y, m, d int, platform, category string) core.Purchase {
		return core.NewPurchase(core.NewDate(y, m, d), platform, "p", category, 1, decimal.NewFromInt(10))
	}
	return core.NewTable([]core.Purchase{
		mk(2024, 1, 1, "Amazon", "Tech"),
		mk(2024, 1, 15, "Shein", "Ropa"),
		mk(2024, 2, 1, "Amazon", "Ropa"),
		mk(2024, 3, 1, "Temu", "Hogar"),
	})
}

func TestApply(t *testing.T) {
	tbl := sampleTable()
	cases := []struct {
		name string
		sel  Selection
		want int
	}{
		{"no restriction", Selection{}, 4},
		{"all keyword", Selection{Platform: "all", Category: "all"}, 4},
		{"label is not the sentinel", Selection{Category: "Todas"}, 0},
		{"sentinel is case sensitive", Selection{Platform: "ALL"}, 0},
		{"platform", Selection{Platform: "Amazon"}, 2},
		{"platform is exact match", Selection{Platform: "amazon"}, 0},
		{"category", Selection{Category: "Ropa"}, 2},
		{"both", Selection{Platform: "Amazon", Category: "Ropa"}, 1},
		{"inclusive range", Selection{Start: core.NewDate(2024, 1, 15), End: core.NewDate(2024, 2, 1)}, 2},
		{"one-sided range ignored", Selection{Start: core.NewDate(2024, 2, 1)}, 4},
		{"empty result", Selection{Platform: "Nope"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(tbl, tc.sel)
			if got.Len() != tc.want {
				t.Fatalf("Apply(%+v) = %d rows, want %d", tc.sel, got.Len(), tc.want)
			}
			if tbl.Len() != 4 {
				t.Fatalf("input table mutated")
			}
		})
	}
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(sampleTable())
	if !reflect.DeepEqual(opts.Platforms, []string{"all", "Amazon", "Shein", "Temu"}) {
		t.Fatalf("platforms = %v", opts.Platforms)
	}
	if !reflect.DeepEqual(opts.Categories, []string{"all", "Hogar", "Ropa", "Tech"}) {
		t.Fatalf("categories = %v", opts.Categories)
	}
	if opts.MinDate.String() != "2024-01-01" || opts.MaxDate.String() != "2024-03-01" {
		t.Fatalf("bounds = %s..%s", opts.MinDate, opts.MaxDate)
	}
}

func TestParseSelection(t *testing.T) {
	q := url.Values{
		"platform": {"Amazon"},
		"category": {"all"},
		"start":    {"2024-01-01"},
		"end":      {"garbage"},
	}
	sel, invalid := ParseSelection(q)
	if sel.Platform != "Amazon" || sel.Category != "" {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if sel.Start.String() != "2024-01-01" || !sel.End.IsZero() {
		t.Fatalf("unexpected dates %+v", sel)
	}
	if !reflect.DeepEqual(invalid, []string{"end"}) {
		t.Fatalf("invalid = %v", invalid)
	}
	if !sel.OneSided() || sel.HasDateRange() {
		t.Fatalf("expected a one-sided selection")
	}

	back, _ := ParseSelection(sel.Query())
	if back != sel {
		t.Fatalf("Query round trip = %+v, want %+v", back, sel)
	}
}

func TestCategoryNamedLikeTheAllLabel(t *testing.T) {
	tbl := core.NewTable([]core.Purchase{
		core.NewPurchase(core.NewDate(2024, 1, 1), "Amazon", "p", "Todas", 1, decimal.NewFromInt(10)),
		core.NewPurchase(core.NewDate(2024, 1, 2), "Amazon", "p", "Tech", 1, decimal.NewFromInt(10)),
	})

	sel, _ := ParseSelection(url.Values{"category": {"Todas"}})
	if sel.Category != "Todas" {
		t.Fatalf("category = %q, want it kept", sel.Category)
	}
	got := Apply(tbl, sel)
	if got.Len() != 1 || got.Rows()[0].Category != "Todas" {
		t.Fatalf("Apply = %d rows, want only the Todas row", got.Len())
	}
	if back, _ := ParseSelection(sel.Query()); back != sel {
		t.Fatalf("Query round trip = %+v, want %+v", back, sel)
	}
}

func genSelection(rt *rapid.T) Selection {
	platforms := []string{"", "all", "Amazon", "Shein", "Temu", "Other"}
	categories := []string{"", "Tech", "Ropa", "Hogar"}
	sel := Selection{
		Platform: rapid.SampledFrom(platforms).Draw(rt, "platform"),
		Category: rapid.SampledFrom(categories).Draw(rt, "category"),
	}
	if rapid.Bool().Draw(rt, "ranged") {
		a := rapid.IntRange(0, 90).Draw(rt, "a")
		b := rapid.IntRange(0, 90).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		base := core.NewDate(2024, 1, 1)
		sel.Start = base.AddDays(a)
		sel.End = base.AddDays(b)
	}
	return sel
}

func TestApplyProperties(t *testing.T) {
	tbl := sampleTable()
	rapid.Check(t, func(rt *rapid.T) {
		sel := genSelection(rt)
		once := Apply(tbl, sel)
		twice := Apply(once, sel)

		if !reflect.DeepEqual(once.Rows(), twice.Rows()) {
			rt.Fatalf("filter not idempotent for %+v", sel)
		}
		if once.Len() > tbl.Len() {
			rt.Fatalf("filter grew the table")
		}
		for _, p := range once.Rows() {
			if !sel.Matches(p) {
				rt.Fatalf("row %+v outside selection %+v", p, sel)
			}
		}
	})
}
