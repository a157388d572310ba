// Package insights is the rule-based narrator. It runs in three
// separated stages: Compute derives statistics from a table, Evaluate
// applies the rules to those statistics, and a Renderer phrases the
// resulting findings for a locale and currency.
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"compras/internal/core"
	"compras/internal/metrics"
)

// RecentWindowDays is the length of the recent-spend window, counted
// back from the latest purchase date.
const RecentWindowDays = 30

// Stats are the aggregates the rules read. Every slice is in a
// deterministic order so rule outcomes never depend on map iteration.
type Stats struct {
	Count      int
	GrandTotal decimal.Decimal

	// Months is spend per month key, chronological.
	Months []core.NamedAmount
	// Drift is the mean month-over-month difference; valid when HasDrift.
	Drift    decimal.Decimal
	HasDrift bool
	// PeakMonth is the first month with maximum spend.
	PeakMonth core.NamedAmount

	// Platforms by spend descending then name; Count holds purchases.
	Platforms []core.NamedAmount
	// FrequentPlatform has the most purchases, ties by name.
	FrequentPlatform core.NamedAmount

	// Categories by spend descending then name.
	Categories []core.NamedAmount

	// Weekdays is spend per weekday, Monday first.
	Weekdays         [7]decimal.Decimal
	PreferredWeekday time.Weekday

	// MeanGapDays is the mean gap between consecutive purchases; valid
	// when HasGap (at least two purchases).
	MeanGapDays float64
	HasGap      bool

	LatestDate  core.Date
	RecentSpend decimal.Decimal

	// Products by purchase count descending then name.
	Products []core.NamedAmount
}

// Compute derives Stats from t. An empty table yields the zero Stats.
func Compute(t core.Table) Stats {
	rows := t.Rows()
	if len(rows) == 0 {
		return Stats{}
	}
	s := Stats{Count: len(rows), LatestDate: t.MaxDate()}

	var weekdayCounts [7]int
	recentFrom := s.LatestDate.AddDays(-RecentWindowDays)
	for _, p := range rows {
		s.GrandTotal = s.GrandTotal.Add(p.LineTotal)
		i := core.WeekdayIndex(p.Weekday)
		s.Weekdays[i] = s.Weekdays[i].Add(p.LineTotal)
		weekdayCounts[i]++
		if !p.Date.Before(recentFrom.Time) {
			s.RecentSpend = s.RecentSpend.Add(p.LineTotal)
		}
	}

	s.Months = metrics.MonthlyTotals(t)
	s.PeakMonth = s.Months[0]
	for _, m := range s.Months[1:] {
		if m.Amount.GreaterThan(s.PeakMonth.Amount) {
			s.PeakMonth = m
		}
	}
	if len(s.Months) >= 2 {
		// The differences telescope, but summing them keeps the
		// definition visible and exact.
		sum := decimal.Zero
		for i := 1; i < len(s.Months); i++ {
			sum = sum.Add(s.Months[i].Amount.Sub(s.Months[i-1].Amount))
		}
		s.Drift = sum.Div(decimal.NewFromInt(int64(len(s.Months) - 1)))
		s.HasDrift = true
	}

	s.Platforms = namedTotals(metrics.ByPlatform(t))
	s.Categories = namedTotals(metrics.ByCategory(t))
	s.FrequentPlatform = mostFrequent(s.Platforms)

	// Only weekdays with purchases compete; ties go to the earliest day.
	best := -1
	for i := range s.Weekdays {
		if weekdayCounts[i] == 0 {
			continue
		}
		if best < 0 || s.Weekdays[i].GreaterThan(s.Weekdays[best]) {
			best = i
		}
	}
	s.PreferredWeekday = core.WeekdayOrder[best]

	if len(rows) >= 2 {
		span := s.LatestDate.DaysSince(t.MinDate())
		s.MeanGapDays = float64(span) / float64(len(rows)-1)
		s.HasGap = true
	}

	s.Products = productCounts(rows)
	return s
}

func namedTotals(groups []metrics.Group) []core.NamedAmount {
	out := make([]core.NamedAmount, len(groups))
	for i, g := range groups {
		out[i] = core.NamedAmount{Name: g.Name, Amount: g.Total, Count: g.Count}
	}
	return out
}

func mostFrequent(items []core.NamedAmount) core.NamedAmount {
	if len(items) == 0 {
		return core.NamedAmount{}
	}
	best := items[0]
	for _, it := range items[1:] {
		if it.Count > best.Count || (it.Count == best.Count && it.Name < best.Name) {
			best = it
		}
	}
	return best
}

func productCounts(rows []core.Purchase) []core.NamedAmount {
	index := make(map[string]int)
	var out []core.NamedAmount
	for _, p := range rows {
		i, ok := index[p.Product]
		if !ok {
			i = len(out)
			index[p.Product] = i
			out = append(out, core.NamedAmount{Name: p.Product})
		}
		out[i].Count++
		out[i].Amount = out[i].Amount.Add(p.LineTotal)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Share is part as a percentage of whole, zero when whole is zero.
func Share(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
