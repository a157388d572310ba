// Package metrics computes scalar and grouped statistics over a purchase
// table. Every function is pure and well-defined on an empty table.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"compras/internal/core"
)

// Summary is the metrics dictionary for one table. Sums are exact; the
// spread statistics are float64 because they come out of gonum.
type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Mean  decimal.Decimal `json:"mean"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`

	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`

	MostExpensive  *core.Purchase `json:"most_expensive,omitempty"`
	LeastExpensive *core.Purchase `json:"least_expensive,omitempty"`

	FirstDate core.Date `json:"first_date"`
	LastDate  core.Date `json:"last_date"`
	SpanDays  int       `json:"span_days"`

	Platforms  int `json:"platforms"`
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Units      int `json:"units"`
}

// Summarize computes the summary of t. An empty table yields the zero
// Summary with nil purchase pointers.
func Summarize(t core.Table) Summary {
	rows := t.Rows()
	if len(rows) == 0 {
		return Summary{}
	}

	s := Summary{
		Count:      len(rows),
		FirstDate:  t.MinDate(),
		LastDate:   t.MaxDate(),
		Platforms:  len(t.Platforms()),
		Categories: len(t.Categories()),
		Products:   len(t.Products()),
	}
	s.SpanDays = s.LastDate.DaysSince(s.FirstDate)

	values := make([]float64, len(rows))
	most, least := 0, 0
	for i, p := range rows {
		s.Total = s.Total.Add(p.LineTotal)
		s.Units += p.Quantity
		values[i] = p.LineTotal.InexactFloat64()
		// Strict comparisons keep the first purchase on ties.
		if p.LineTotal.GreaterThan(rows[most].LineTotal) {
			most = i
		}
		if p.LineTotal.LessThan(rows[least].LineTotal) {
			least = i
		}
	}
	s.Mean = s.Total.Div(decimal.NewFromInt(int64(len(rows))))
	s.MostExpensive = &rows[most]
	s.LeastExpensive = &rows[least]
	s.Max = rows[most].LineTotal
	s.Min = rows[least].LineTotal

	sort.Float64s(values)
	s.Median = median(values)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

// median of already sorted values, averaging the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// Group is the per-platform or per-category breakdown row.
type Group struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Mean  decimal.Decimal `json:"mean"`
	Count int             `json:"count"`
	Max   decimal.Decimal `json:"max"`
	Min   decimal.Decimal `json:"min"`
	// Share of the table total, in percent.
	Share float64 `json:"share"`
}

// ByPlatform groups spend per platform, by total descending then name.
func ByPlatform(t core.Table) []Group {
	return groupBy(t, func(p core.Purchase) string { return p.Platform })
}

// ByCategory groups spend per category, by total descending then name.
func ByCategory(t core.Table) []Group {
	return groupBy(t, func(p core.Purchase) string { return p.Category })
}

func groupBy(t core.Table, key func(core.Purchase) string) []Group {
	index := make(map[string]int)
	var groups []Group
	grand := decimal.Zero
	for _, p := range t.Rows() {
		grand = grand.Add(p.LineTotal)
		k := key(p)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Name: k, Max: p.LineTotal, Min: p.LineTotal})
		}
		g := &groups[i]
		g.Total = g.Total.Add(p.LineTotal)
		g.Count++
		if p.LineTotal.GreaterThan(g.Max) {
			g.Max = p.LineTotal
		}
		if p.LineTotal.LessThan(g.Min) {
			g.Min = p.LineTotal
		}
	}

	for i := range groups {
		g := &groups[i]
		g.Mean = g.Total.Div(decimal.NewFromInt(int64(g.Count)))
		if grand.IsPositive() {
			g.Share = g.Total.Div(grand).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
	}
	SortNamed(groups, func(g Group) (string, decimal.Decimal) { return g.Name, g.Total })
	return groups
}

// SortNamed orders items by amount descending, ties by name ascending.
func SortNamed[T any](items []T, key func(T) (string, decimal.Decimal)) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, ai := key(items[i])
		nj, aj := key(items[j])
		if c := ai.Cmp(aj); c != 0 {
			return c > 0
		}
		return ni < nj
	})
}

// MonthlyTotals returns spend per month key in chronological order.
func MonthlyTotals(t core.Table) []core.NamedAmount {
	return orderedTotals(t, func(p core.Purchase) string { return p.MonthKey })
}

// WeeklyTotals returns spend and purchase count per ISO year-week in
// chronological order.
func WeeklyTotals(t core.Table) []core.NamedAmount {
	return orderedTotals(t, func(p core.Purchase) string { return p.WeekKey() })
}

// orderedTotals aggregates by a key whose lexical order is chronological.
func orderedTotals(t core.Table, key func(core.Purchase) string) []core.NamedAmount {
	index := make(map[string]int)
	var out []core.NamedAmount
	for _, p := range t.Rows() {
		k := key(p)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, core.NamedAmount{Name: k})
		}
		out[i].Amount = out[i].Amount.Add(p.LineTotal)
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
