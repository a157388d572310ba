package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"compras/internal/core"
	"compras/internal/metrics"
)

const (
	histogramBins = 20
	pieHole       = 0.4
	maxLabelRunes = 30
)

// Build dispatches to the builder registered for kind.
func Build(kind Kind, t core.Table, opts Options) (*Chart, error) {
	var build func(core.Table, Options) *Chart
	switch kind {
	case KindMonthly:
		build = MonthlySpend
	case KindPlatforms:
		build = PlatformShare
	case KindCategories:
		build = CategorySpend
	case KindWeekly:
		build = WeeklyTrend
	case KindPrices:
		build = PriceHistogram
	case KindTop:
		build = TopPurchases
	case KindHeatmap:
		build = CalendarHeatmap
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return build(t, opts), nil
}

// BuildAll builds every kind in display order, skipping empty charts.
func BuildAll(t core.Table, opts Options) []*Chart {
	var out []*Chart
	for _, k := range Kinds {
		if c, _ := Build(k, t, opts); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// MonthlySpend is a line of spend per month, ordered by month key and
// labeled with the localized month name.
func MonthlySpend(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	months := metrics.MonthlyTotals(t)
	points := make([]Point, len(months))
	for i, m := range months {
		points[i] = Point{Label: core.MonthKeyLabel(m.Name, opts.Locale), Value: money(m.Amount), Tag: m.Name}
	}
	return &Chart{
		Kind:       KindMonthly,
		Type:       TypeLine,
		Title:      l.monthly,
		XAxis:      l.month,
		YAxis:      l.spendAxis(opts.Currency),
		Series:     []Series{{Name: l.spendAxis(opts.Currency), Data: points, Color: palette[0]}},
		ShowLegend: false,
		ShowGrid:   true,
	}
}

// PlatformShare is a donut of spend per platform.
func PlatformShare(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	groups := metrics.ByPlatform(t)
	points := make([]Point, len(groups))
	for i, g := range groups {
		points[i] = Point{Label: g.Name, Value: money(g.Total)}
	}
	return &Chart{
		Kind:       KindPlatforms,
		Type:       TypePie,
		Title:      l.platforms,
		Series:     []Series{{Name: l.platform, Data: points}},
		Hole:       pieHole,
		Colors:     colors(len(points)),
		ShowLegend: true,
	}
}

// CategorySpend is a bar of spend per category, descending.
func CategorySpend(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	groups := metrics.ByCategory(t)
	points := make([]Point, len(groups))
	for i, g := range groups {
		points[i] = Point{Label: g.Name, Value: money(g.Total)}
	}
	return &Chart{
		Kind:     KindCategories,
		Type:     TypeBar,
		Title:    l.categories,
		XAxis:    l.category,
		YAxis:    l.spendAxis(opts.Currency),
		Series:   []Series{{Name: l.spendAxis(opts.Currency), Data: points}},
		Colors:   colors(len(points)),
		ShowGrid: true,
	}
}

// WeeklyTrend plots spend and purchase count per ISO year-week.
func WeeklyTrend(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	weeks := metrics.WeeklyTotals(t)
	spend := make([]Point, len(weeks))
	count := make([]Point, len(weeks))
	for i, w := range weeks {
		spend[i] = Point{Label: w.Name, Value: money(w.Amount)}
		count[i] = Point{Label: w.Name, Value: float64(w.Count)}
	}
	return &Chart{
		Kind:  KindWeekly,
		Type:  TypeLine,
		Title: l.weekly,
		XAxis: l.week,
		YAxis: l.spendAxis(opts.Currency),
		Series: []Series{
			{Name: l.spendAxis(opts.Currency), Data: spend, Color: palette[0]},
			{Name: l.purchases, Data: count, Color: palette[1]},
		},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// PriceHistogram buckets unit prices into equal-width bins.
func PriceHistogram(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	rows := t.Rows()
	prices := make([]float64, len(rows))
	for i, p := range rows {
		prices[i] = p.UnitPrice.InexactFloat64()
	}
	sort.Float64s(prices)

	lo, hi := prices[0], prices[len(prices)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, histogramBins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram counts over half-open bins; widen the last edge so
	// the maximum price lands in the final bin.
	dividers[histogramBins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, prices, nil)

	bins := make([]Bin, histogramBins)
	points := make([]Point, histogramBins)
	for i := range bins {
		bins[i] = Bin{Low: dividers[i], High: dividers[i+1], Count: int(counts[i])}
		points[i] = Point{
			Label: fmt.Sprintf("%.2f-%.2f", dividers[i], dividers[i+1]),
			Value: counts[i],
		}
	}
	bins[histogramBins-1].High = hi

	return &Chart{
		Kind:     KindPrices,
		Type:     TypeHistogram,
		Title:    l.prices,
		XAxis:    fmt.Sprintf(l.unitPrice, opts.Currency),
		YAxis:    l.frequency,
		Series:   []Series{{Name: l.frequency, Data: points, Color: palette[4]}},
		Bins:     bins,
		ShowGrid: true,
	}
}

// TopPurchases ranks the N purchases with the largest line totals.
func TopPurchases(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	rows := t.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LineTotal.GreaterThan(rows[j].LineTotal)
	})
	if len(rows) > opts.TopN {
		rows = rows[:opts.TopN]
	}
	points := make([]Point, len(rows))
	for i, p := range rows {
		points[i] = Point{Label: Truncate(p.Product, maxLabelRunes), Value: money(p.LineTotal), Tag: p.Platform}
	}
	return &Chart{
		Kind:     KindTop,
		Type:     TypeHBar,
		Title:    fmt.Sprintf(l.top, opts.TopN),
		XAxis:    l.spendAxis(opts.Currency),
		YAxis:    l.product,
		Series:   []Series{{Name: l.spendAxis(opts.Currency), Data: points}},
		Colors:   colors(len(points)),
		ShowGrid: true,
	}
}

// Truncate shortens s to n runes plus "..." when it is longer than n.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// CalendarHeatmap is spend per weekday (Monday first) and month
// (January first). Missing cells are zero.
func CalendarHeatmap(t core.Table, opts Options) *Chart {
	if t.IsEmpty() {
		return nil
	}
	opts = opts.withDefaults()
	l := labelsFor(opts.Locale)

	var cells [7][12]decimal.Decimal
	for _, p := range t.Rows() {
		r, c := core.WeekdayIndex(p.Weekday), int(p.Date.Month())-1
		cells[r][c] = cells[r][c].Add(p.LineTotal)
	}

	hm := &Heatmap{
		Rows:   make([]string, 7),
		Cols:   make([]string, 12),
		Values: make([][]float64, 7),
	}
	for i, wd := range core.WeekdayOrder {
		hm.Rows[i] = core.WeekdayName(wd, opts.Locale)
		hm.Values[i] = make([]float64, 12)
		for j := range hm.Values[i] {
			hm.Values[i][j] = money(cells[i][j])
		}
	}
	for j, m := range core.MonthOrder {
		hm.Cols[j] = core.MonthAbbrev(m, opts.Locale)
	}
	return &Chart{
		Kind:    KindHeatmap,
		Type:    TypeHeatmap,
		Title:   l.heatmap,
		XAxis:   l.month,
		YAxis:   l.weekday,
		Heatmap: hm,
	}
}
