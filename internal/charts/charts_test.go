package charts

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"compras/internal/core"
)

func buy(y, m, d int, platform, product string, qty int, price string) core.Purchase {
	return core.NewPurchase(core.NewDate(y, m, d), platform, product, "C", qty, decimal.RequireFromString(price))
}

func fixture() core.Table {
	return core.NewTable([]core.Purchase{
		buy(2024, 2, 5, "Amazon", "Auriculares inalámbricos con cancelación de ruido", 1, "120"), // Monday
		buy(2024, 1, 10, "Shein", "Camisa", 2, "15"),                                             // Wednesday
		buy(2024, 12, 1, "Amazon", "Lámpara", 1, "40"),                                           // Sunday
		buy(2024, 1, 14, "Temu", "Taza", 3, "5"),                                                 // Sunday
	})
}

func TestEmptyTableYieldsNoChart(t *testing.T) {
	empty := core.NewTable(nil)
	for _, k := range Kinds {
		c, err := Build(k, empty, Options{})
		if err != nil {
			t.Fatalf("Build(%s): %v", k, err)
		}
		if c != nil {
			t.Fatalf("Build(%s) on empty table returned a chart", k)
		}
	}
	if got := BuildAll(empty, Options{}); len(got) != 0 {
		t.Fatalf("BuildAll on empty table = %d charts", len(got))
	}
}

func TestBuildUnknownKind(t *testing.T) {
	if _, err := Build("radar", fixture(), Options{}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestMonthlySpendChronological(t *testing.T) {
	c := MonthlySpend(fixture(), Options{Locale: core.LocaleES})
	data := c.Series[0].Data
	wantLabels := []string{"Enero 2024", "Febrero 2024", "Diciembre 2024"}
	wantValues := []float64{45, 120, 40}
	if len(data) != len(wantLabels) {
		t.Fatalf("points = %d", len(data))
	}
	for i := range data {
		if data[i].Label != wantLabels[i] || data[i].Value != wantValues[i] {
			t.Fatalf("point %d = %+v, want %s=%v", i, data[i], wantLabels[i], wantValues[i])
		}
	}
	if c.Type != TypeLine || c.Title != "📅 Evolución del Gasto Mensual" {
		t.Fatalf("unexpected chart header %+v", c)
	}
}

func TestPlatformShare(t *testing.T) {
	c := PlatformShare(fixture(), Options{})
	if c.Hole != 0.4 || c.Type != TypePie {
		t.Fatalf("unexpected pie %+v", c)
	}
	data := c.Series[0].Data
	if data[0].Label != "Amazon" || data[0].Value != 160 {
		t.Fatalf("first slice = %+v", data[0])
	}
}

func TestWeeklyTrendSeries(t *testing.T) {
	c := WeeklyTrend(fixture(), Options{})
	if len(c.Series) != 2 {
		t.Fatalf("series = %d, want 2", len(c.Series))
	}
	spend, count := c.Series[0].Data, c.Series[1].Data
	// 2024-01-10 and 2024-01-14 share ISO week 2.
	if spend[0].Label != "2024-W02" || spend[0].Value != 45 || count[0].Value != 2 {
		t.Fatalf("first week = %+v / %+v", spend[0], count[0])
	}
	// 2024-12-01 is a Sunday in ISO week 48.
	if last := spend[len(spend)-1]; last.Label != "2024-W48" {
		t.Fatalf("last week = %q", last.Label)
	}
}

func TestPriceHistogram(t *testing.T) {
	c := PriceHistogram(fixture(), Options{})
	if len(c.Bins) != 20 {
		t.Fatalf("bins = %d, want 20", len(c.Bins))
	}
	total := 0
	for _, b := range c.Bins {
		total += b.Count
	}
	if total != 4 {
		t.Fatalf("binned %d prices, want 4", total)
	}
	if c.Bins[0].Low != 5 || c.Bins[19].High != 120 || c.Bins[19].Count != 1 {
		t.Fatalf("unexpected edges %+v .. %+v", c.Bins[0], c.Bins[19])
	}

	single := core.NewTable([]core.Purchase{buy(2024, 1, 1, "A", "x", 1, "10"), buy(2024, 1, 2, "A", "y", 1, "10")})
	h := PriceHistogram(single, Options{})
	if h.Bins[0].Low != 9.5 || h.Bins[19].High != 10.5 {
		t.Fatalf("single price span = %v..%v", h.Bins[0].Low, h.Bins[19].High)
	}
}

func TestTopPurchases(t *testing.T) {
	c := TopPurchases(fixture(), Options{TopN: 2})
	data := c.Series[0].Data
	if len(data) != 2 {
		t.Fatalf("points = %d, want 2", len(data))
	}
	if !strings.HasSuffix(data[0].Label, "...") || len([]rune(data[0].Label)) != 33 {
		t.Fatalf("label not truncated: %q", data[0].Label)
	}
	if data[0].Tag != "Amazon" || data[1].Label != "Lámpara" {
		t.Fatalf("unexpected ranking %+v", data)
	}
	if c.Title != "🏆 Top 2 Productos Más Caros" || c.Type != TypeHBar {
		t.Fatalf("unexpected header %q %q", c.Title, c.Type)
	}
}

func TestTruncate(t *testing.T) {
	cases := map[string]string{
		"corto":                 "corto",
		strings.Repeat("ñ", 30): strings.Repeat("ñ", 30),
		strings.Repeat("ñ", 31): strings.Repeat("ñ", 30) + "...",
	}
	for in, want := range cases {
		if got := Truncate(in, 30); got != want {
			t.Fatalf("Truncate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCalendarHeatmap(t *testing.T) {
	c := CalendarHeatmap(fixture(), Options{Locale: core.LocaleEN})
	hm := c.Heatmap
	if len(hm.Rows) != 7 || len(hm.Cols) != 12 {
		t.Fatalf("shape = %dx%d", len(hm.Rows), len(hm.Cols))
	}
	if hm.Rows[0] != "Monday" || hm.Rows[6] != "Sunday" || hm.Cols[0] != "Jan" {
		t.Fatalf("axes = %v / %v", hm.Rows, hm.Cols)
	}
	if hm.Values[0][1] != 120 || hm.Values[2][0] != 30 || hm.Values[6][0] != 15 || hm.Values[6][11] != 40 {
		t.Fatalf("unexpected values %v", hm.Values)
	}
	if hm.Values[3][5] != 0 {
		t.Fatalf("missing cell not zero")
	}
}
