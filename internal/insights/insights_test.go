package insights

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"compras/internal/core"
)

func buy(date core.Date, platform, category, product string, price string) core.Purchase {
	return core.NewPurchase(date, platform, product, category, 1, decimal.RequireFromString(price))
}

func codes(fs []Finding) map[Code]Finding {
	out := make(map[Code]Finding, len(fs))
	for _, f := range fs {
		out[f.Code] = f
	}
	return out
}

func evaluate(rows ...core.Purchase) map[Code]Finding {
	return codes(Evaluate(Compute(core.NewTable(rows)), DefaultThresholds()))
}

func TestEmptyTable(t *testing.T) {
	if got := NewEngine(DefaultSettings()).Generate(core.NewTable(nil)); got != nil {
		t.Fatalf("Generate on empty table = %v, want nil", got)
	}
	rep := NewEngine(DefaultSettings()).Report(core.NewTable(nil))
	if rep.BalancedText != "" || rep.NoAlertsText != "" || len(rep.Insights) != 0 {
		t.Fatalf("empty report not empty: %+v", rep)
	}
}

func TestMonthlyTrend(t *testing.T) {
	got := evaluate(
		buy(core.NewDate(2024, 1, 5), "A", "C", "x", "100"),
		buy(core.NewDate(2024, 2, 5), "A", "C", "y", "150"),
		buy(core.NewDate(2024, 3, 5), "A", "C", "z", "125"),
	)
	up, ok := got[CodeTrendUp]
	if !ok {
		t.Fatalf("expected upward trend, got %v", got)
	}
	if !up.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("drift = %s, want 12.5", up.Amount)
	}
	if peak := got[CodePeakMonth]; peak.Name != "2024-02" || !peak.Amount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("peak = %+v", peak)
	}
}

func TestMonthlyTrendDirections(t *testing.T) {
	down := evaluate(
		buy(core.NewDate(2024, 1, 5), "A", "C", "x", "90"),
		buy(core.NewDate(2024, 2, 5), "A", "C", "y", "30"),
	)
	if _, ok := down[CodeTrendDown]; !ok {
		t.Fatalf("expected downward trend, got %v", down)
	}

	stable := evaluate(
		buy(core.NewDate(2024, 1, 5), "A", "C", "x", "50"),
		buy(core.NewDate(2024, 2, 5), "A", "C", "y", "80"),
		buy(core.NewDate(2024, 3, 5), "A", "C", "z", "50"),
	)
	if _, ok := stable[CodeTrendStable]; !ok {
		t.Fatalf("expected stable trend, got %v", stable)
	}
	// The first of equal peaks wins.
	if stable[CodePeakMonth].Name != "2024-02" {
		t.Fatalf("peak = %q", stable[CodePeakMonth].Name)
	}

	single := evaluate(buy(core.NewDate(2024, 1, 5), "A", "C", "x", "50"))
	if _, ok := single[CodePeakMonth]; !ok {
		t.Fatalf("peak month missing for a single month")
	}
	for _, c := range []Code{CodeTrendUp, CodeTrendDown, CodeTrendStable} {
		if _, ok := single[c]; ok {
			t.Fatalf("trend %s emitted with one month", c)
		}
	}
}

func TestPlatformConcentration(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	got := evaluate(
		buy(d, "Amazon", "C", "a", "300"),
		buy(d, "Shein", "C", "b", "10"),
		buy(d, "Shein", "C", "c", "10"),
		buy(d, "Temu", "C", "d", "10"),
		buy(d, "Temu", "C", "e", "10"),
	)
	top := got[CodeTopPlatform]
	if top.Name != "Amazon" || top.Percent < 88.2 || top.Percent > 88.3 {
		t.Fatalf("top platform = %+v", top)
	}
	// Shein and Temu tie on count; the name breaks the tie.
	if freq := got[CodeFrequentPlatform]; freq.Name != "Shein" || freq.Count != 2 {
		t.Fatalf("frequent platform = %+v", freq)
	}
}

func TestCategoryDiversityBands(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	cases := []struct {
		categories int
		want       Code
	}{
		{1, CodeHighFocus},
		{2, CodeHighFocus},
		{3, CodeModerateFocus},
		{4, CodeModerateFocus},
		{5, CodeDiversified},
		{7, CodeDiversified},
	}
	for _, tc := range cases {
		var rows []core.Purchase
		for i := 0; i < tc.categories; i++ {
			rows = append(rows, buy(d, "A", string(rune('A'+i)), "x", "10"))
		}
		got := evaluate(rows...)
		if _, ok := got[tc.want]; !ok {
			t.Fatalf("%d categories: expected %s, got %v", tc.categories, tc.want, got)
		}
		_, breadth := got[CodeCategoryBreadth]
		if breadth != (tc.categories < 3) {
			t.Fatalf("%d categories: breadth recommendation = %v", tc.categories, breadth)
		}
	}
}

func TestPreferredWeekday(t *testing.T) {
	got := evaluate(
		buy(core.NewDate(2024, 1, 7), "A", "C", "x", "50"), // Sunday
		buy(core.NewDate(2024, 1, 3), "A", "C", "y", "50"), // Wednesday
		buy(core.NewDate(2024, 1, 2), "A", "C", "z", "10"), // Tuesday
	)
	// Equal totals resolve to the earliest weekday from Monday.
	if wd := got[CodePreferredWeekday].Weekday; wd != time.Wednesday {
		t.Fatalf("preferred weekday = %s, want Wednesday", wd)
	}
}

func TestPlatformImbalance(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"ratio 10", "500", "50", true},
		{"ratio 2.5", "500", "200", false},
		{"ratio exactly 5", "500", "100", false},
		{"zero minimum", "500", "0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluate(buy(d, "A", "C", "x", tc.a), buy(d, "B", "C", "y", tc.b))
			f, ok := got[CodePlatformImbalance]
			if ok != tc.want {
				t.Fatalf("imbalance fired = %v, want %v", ok, tc.want)
			}
			if ok && (f.Name != "A" || f.Other != "B") {
				t.Fatalf("imbalance names = %s/%s", f.Name, f.Other)
			}
		})
	}

	if _, ok := evaluate(buy(d, "A", "C", "x", "500"))[CodePlatformImbalance]; ok {
		t.Fatalf("imbalance fired with a single platform")
	}
}

func TestPurchaseCadence(t *testing.T) {
	often := evaluate(
		buy(core.NewDate(2024, 1, 1), "A", "C", "x", "1"),
		buy(core.NewDate(2024, 1, 2), "A", "C", "y", "1"),
		buy(core.NewDate(2024, 1, 3), "A", "C", "z", "1"),
	)
	if _, ok := often[CodeImpulseControl]; !ok {
		t.Fatalf("expected impulse control, got %v", often)
	}

	rarely := evaluate(
		buy(core.NewDate(2024, 1, 1), "A", "C", "x", "1"),
		buy(core.NewDate(2024, 3, 1), "A", "C", "y", "1"),
	)
	if _, ok := rarely[CodePlanning]; !ok {
		t.Fatalf("expected planning, got %v", rarely)
	}

	steady := evaluate(
		buy(core.NewDate(2024, 1, 1), "A", "C", "x", "1"),
		buy(core.NewDate(2024, 1, 11), "A", "C", "y", "1"),
	)
	if _, ok := steady[CodeImpulseControl]; ok {
		t.Fatalf("impulse control fired at a 10 day gap")
	}
	if _, ok := steady[CodePlanning]; ok {
		t.Fatalf("planning fired at a 10 day gap")
	}

	one := evaluate(buy(core.NewDate(2024, 1, 1), "A", "C", "x", "1"))
	if _, ok := one[CodeImpulseControl]; ok {
		t.Fatalf("cadence evaluated with one purchase")
	}
}

// spikeRows builds n purchases of 1 on the latest date plus older rows.
func spikeRows(recent int, older ...core.Purchase) []core.Purchase {
	rows := append([]core.Purchase(nil), older...)
	for i := 0; i < recent; i++ {
		rows = append(rows, buy(core.NewDate(2024, 6, 30), "A", "C", "p"+string(rune('a'+i%26))+string(rune('a'+i/26)), "1"))
	}
	return rows
}

func TestRecentSpendSpike(t *testing.T) {
	// All rows are recent, so recent == grand and the rule fires iff
	// count > 45. Exactly 45 sits on the boundary and must not fire.
	if _, ok := evaluate(spikeRows(45)...)[CodeSpendSpike]; ok {
		t.Fatalf("spike fired at exactly 1.5x")
	}
	f, ok := evaluate(spikeRows(46)...)[CodeSpendSpike]
	if !ok {
		t.Fatalf("spike did not fire above 1.5x")
	}
	if f.Severity != SeverityCritical || !f.Amount.Equal(decimal.NewFromInt(46)) {
		t.Fatalf("unexpected spike finding %+v", f)
	}

	// The window is inclusive of latest-30d and ignores older rows.
	s := Compute(core.NewTable(spikeRows(2,
		buy(core.NewDate(2024, 5, 31), "A", "C", "edge", "5"),
		buy(core.NewDate(2024, 5, 30), "A", "C", "old", "7"),
	)))
	if !s.RecentSpend.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("recent spend = %s, want 7", s.RecentSpend)
	}
}

func TestRepeatedProduct(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	twice := evaluate(buy(d, "A", "C", "X", "1"), buy(d, "A", "C", "X", "1"))
	if _, ok := twice[CodeRepeatedProduct]; ok {
		t.Fatalf("repeated product fired at 2")
	}
	thrice := evaluate(
		buy(d, "A", "C", "Y", "1"), buy(d, "A", "C", "Y", "1"), buy(d, "A", "C", "Y", "1"),
		buy(d, "A", "C", "X", "1"), buy(d, "A", "C", "X", "1"), buy(d, "A", "C", "X", "1"),
	)
	f, ok := thrice[CodeRepeatedProduct]
	if !ok || f.Name != "X" || f.Count != 3 || f.Severity != SeverityWarning {
		t.Fatalf("repeated product = %+v, %v", f, ok)
	}
}

func TestEvaluateOrder(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	fs := Evaluate(Compute(core.NewTable([]core.Purchase{
		buy(d, "A", "C", "X", "100"),
		buy(d.AddDays(1), "A", "C", "X", "1"),
		buy(d.AddDays(2), "B", "C", "X", "1"),
	})), DefaultThresholds())
	last := 0
	for _, f := range fs {
		if f.Rule < last {
			t.Fatalf("findings out of rule order: %v", fs)
		}
		last = f.Rule
	}
	if fs[len(fs)-1].Code != CodeRepeatedProduct {
		t.Fatalf("last finding = %s", fs[len(fs)-1].Code)
	}
}

func TestRenderSpanish(t *testing.T) {
	r := Renderer{Settings: Settings{Currency: "€", Locale: core.LocaleES, Thresholds: DefaultThresholds()}}
	cases := []struct {
		f    Finding
		want string
	}{
		{
			Finding{Code: CodeTrendUp, Amount: decimal.RequireFromString("1234.5")},
			"📈 **Tendencia alcista**: Tu gasto mensual está aumentando en promedio €1,234.50 por mes",
		},
		{
			Finding{Code: CodePeakMonth, Name: "2024-02", Amount: decimal.NewFromInt(150)},
			"💰 **Mes pico**: Febrero 2024 fue el mes con mayor gasto (€150.00)",
		},
		{
			Finding{Code: CodeTopPlatform, Name: "Amazon", Percent: 62.345, Amount: decimal.NewFromInt(500)},
			"🏆 **Plataforma principal**: Amazon representa el 62.3% de tu gasto total (€500.00)",
		},
		{
			Finding{Code: CodePreferredWeekday, Weekday: time.Saturday, Amount: decimal.NewFromInt(20)},
			"📅 **Día preferido**: Sábado es cuando más gastas (€20.00)",
		},
		{
			Finding{Code: CodeRepeatedProduct, Name: "Café", Count: 4},
			"🔄 **Producto repetido**: 'Café' lo has comprado 4 veces",
		},
	}
	for _, tc := range cases {
		if got := r.Text(tc.f); got != tc.want {
			t.Errorf("Text(%s)\n got %q\nwant %q", tc.f.Code, got, tc.want)
		}
	}
}

func TestReportGroupsAndFallbacks(t *testing.T) {
	d := core.NewDate(2024, 1, 1)
	var rows []core.Purchase
	for i := 0; i < 5; i++ {
		rows = append(rows, buy(d.AddDays(i*10), "A", string(rune('A'+i)), string(rune('a'+i)), "10"))
	}
	e := NewEngine(Settings{Currency: "$", Locale: core.LocaleEN, Thresholds: DefaultThresholds()})
	rep := e.Report(core.NewTable(rows))

	if len(rep.Insights) == 0 {
		t.Fatalf("no insights")
	}
	if len(rep.Recommendations) != 0 || rep.BalancedText == "" {
		t.Fatalf("expected balanced fallback, got %+v", rep.Recommendations)
	}
	if len(rep.Alerts) != 0 || !strings.HasPrefix(rep.NoAlertsText, "✅") {
		t.Fatalf("expected no-alerts fallback, got %+v", rep.Alerts)
	}
	if rep.Patterns.Purchases != 5 || rep.Patterns.MeanGapDays != 10 || rep.Patterns.PreferredWeekday != "Monday" {
		t.Fatalf("unexpected patterns %+v", rep.Patterns)
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insights.yaml")
	body := "currency: \"€\"\nlocale: en\nthresholds:\n  spike_factor: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(path, DefaultSettings())
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Currency != "€" || s.Locale != core.LocaleEN || s.Thresholds.SpikeFactor != 2 {
		t.Fatalf("overrides not applied: %+v", s)
	}
	if s.Thresholds.RepeatedProductCount != 3 {
		t.Fatalf("absent key lost its default: %+v", s.Thresholds)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("locale: fr\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(bad, DefaultSettings()); err == nil {
		t.Fatalf("expected validation error for unknown locale")
	}
}
