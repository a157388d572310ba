package insights

import (
	"time"

	"github.com/shopspring/decimal"

	"compras/internal/core"
)

// Kind classifies a finding for presentation.
type Kind string

const (
	KindInsight        Kind = "insight"
	KindRecommendation Kind = "recommendation"
	KindAlert          Kind = "alert"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Code identifies the statement a finding renders to.
type Code string

const (
	CodeTrendUp           Code = "trend_up"
	CodeTrendDown         Code = "trend_down"
	CodeTrendStable       Code = "trend_stable"
	CodePeakMonth         Code = "peak_month"
	CodeTopPlatform       Code = "top_platform"
	CodeFrequentPlatform  Code = "frequent_platform"
	CodeTopCategory       Code = "top_category"
	CodeDiversified       Code = "diversified"
	CodeModerateFocus     Code = "moderate_focus"
	CodeHighFocus         Code = "high_focus"
	CodePreferredWeekday  Code = "preferred_weekday"
	CodePlatformImbalance Code = "platform_imbalance"
	CodeCategoryBreadth   Code = "category_breadth"
	CodeImpulseControl    Code = "impulse_control"
	CodePlanning          Code = "planning"
	CodeSpendSpike        Code = "spend_spike"
	CodeRepeatedProduct   Code = "repeated_product"
)

// Finding is a rule outcome before phrasing. Only the fields its Code
// needs are set.
type Finding struct {
	Rule     int      `json:"rule"`
	Code     Code     `json:"code"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`

	Name    string          `json:"name,omitempty"`
	Other   string          `json:"other,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent,omitempty"`
	Count   int             `json:"count,omitempty"`
	Weekday time.Weekday    `json:"-"`
}

// Thresholds parameterize the rules. DefaultThresholds holds the
// calibrated values.
type Thresholds struct {
	DiversifiedCategories int     `yaml:"diversified_categories" validate:"gte=1"`
	ModerateCategories    int     `yaml:"moderate_categories" validate:"gte=1,ltefield=DiversifiedCategories"`
	ImbalanceRatio        float64 `yaml:"imbalance_ratio" validate:"gt=0"`
	MinCategories         int     `yaml:"min_categories" validate:"gte=1"`
	ImpulseGapDays        float64 `yaml:"impulse_gap_days" validate:"gte=0"`
	PlanningGapDays       float64 `yaml:"planning_gap_days" validate:"gtefield=ImpulseGapDays"`
	SpikeFactor           float64 `yaml:"spike_factor" validate:"gt=0"`
	RepeatedProductCount  int     `yaml:"repeated_product_count" validate:"gte=2"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DiversifiedCategories: 5,
		ModerateCategories:    3,
		ImbalanceRatio:        5,
		MinCategories:         3,
		ImpulseGapDays:        3,
		PlanningGapDays:       30,
		SpikeFactor:           1.5,
		RepeatedProductCount:  3,
	}
}

type rule func(Stats, Thresholds) []Finding

// rules run in this fixed order; the output is their concatenation.
var rules = []rule{
	monthlyTrend,
	platformConcentration,
	categoryConcentration,
	temporalPreference,
	platformImbalance,
	categoryBreadth,
	purchaseCadence,
	recentSpike,
	repeatedProduct,
}

// Evaluate applies every rule to s. A rule lacking data contributes
// nothing; an empty Stats yields no findings.
func Evaluate(s Stats, th Thresholds) []Finding {
	if s.Count == 0 {
		return nil
	}
	var out []Finding
	for i, r := range rules {
		for _, f := range r(s, th) {
			f.Rule = i + 1
			out = append(out, f)
		}
	}
	return out
}

func insight(code Code) Finding {
	return Finding{Code: code, Kind: KindInsight, Severity: SeverityInfo}
}

func recommendation(code Code) Finding {
	return Finding{Code: code, Kind: KindRecommendation, Severity: SeveritySuccess}
}

func alert(code Code, sev Severity) Finding {
	return Finding{Code: code, Kind: KindAlert, Severity: sev}
}

func monthlyTrend(s Stats, _ Thresholds) []Finding {
	var out []Finding
	if s.HasDrift {
		var f Finding
		switch s.Drift.Sign() {
		case 1:
			f = insight(CodeTrendUp)
		case -1:
			f = insight(CodeTrendDown)
		default:
			f = insight(CodeTrendStable)
		}
		f.Amount = s.Drift.Abs()
		out = append(out, f)
	}
	if len(s.Months) > 0 {
		f := insight(CodePeakMonth)
		f.Name = s.PeakMonth.Name
		f.Amount = s.PeakMonth.Amount
		out = append(out, f)
	}
	return out
}

func platformConcentration(s Stats, _ Thresholds) []Finding {
	if len(s.Platforms) == 0 {
		return nil
	}
	top := insight(CodeTopPlatform)
	top.Name = s.Platforms[0].Name
	top.Amount = s.Platforms[0].Amount
	top.Percent = Share(top.Amount, s.GrandTotal)

	freq := insight(CodeFrequentPlatform)
	freq.Name = s.FrequentPlatform.Name
	freq.Count = s.FrequentPlatform.Count
	return []Finding{top, freq}
}

func categoryConcentration(s Stats, th Thresholds) []Finding {
	if len(s.Categories) == 0 {
		return nil
	}
	top := insight(CodeTopCategory)
	top.Name = s.Categories[0].Name
	top.Amount = s.Categories[0].Amount
	top.Percent = Share(top.Amount, s.GrandTotal)

	n := len(s.Categories)
	var diversity Finding
	switch {
	case n >= th.DiversifiedCategories:
		diversity = insight(CodeDiversified)
	case n >= th.ModerateCategories:
		diversity = insight(CodeModerateFocus)
	default:
		diversity = insight(CodeHighFocus)
	}
	diversity.Count = n
	return []Finding{top, diversity}
}

func temporalPreference(s Stats, _ Thresholds) []Finding {
	f := insight(CodePreferredWeekday)
	f.Name = s.PreferredWeekday.String()
	f.Weekday = s.PreferredWeekday
	f.Amount = s.Weekdays[core.WeekdayIndex(s.PreferredWeekday)]
	return []Finding{f}
}

func platformImbalance(s Stats, th Thresholds) []Finding {
	if len(s.Platforms) < 2 {
		return nil
	}
	top := s.Platforms[0]
	low := s.Platforms[len(s.Platforms)-1]
	for _, p := range s.Platforms {
		if p.Amount.Equal(low.Amount) {
			low = p // first by name among the lowest
			break
		}
	}
	// A zero minimum exceeds any ratio; no division happens.
	exceeds := low.Amount.IsZero() ||
		top.Amount.GreaterThan(low.Amount.Mul(decimal.NewFromFloat(th.ImbalanceRatio)))
	if !exceeds {
		return nil
	}
	f := recommendation(CodePlatformImbalance)
	f.Name = top.Name
	f.Other = low.Name
	return []Finding{f}
}

func categoryBreadth(s Stats, th Thresholds) []Finding {
	if len(s.Categories) >= th.MinCategories {
		return nil
	}
	f := recommendation(CodeCategoryBreadth)
	f.Count = len(s.Categories)
	return []Finding{f}
}

func purchaseCadence(s Stats, th Thresholds) []Finding {
	if !s.HasGap {
		return nil
	}
	switch {
	case s.MeanGapDays < th.ImpulseGapDays:
		return []Finding{recommendation(CodeImpulseControl)}
	case s.MeanGapDays > th.PlanningGapDays:
		return []Finding{recommendation(CodePlanning)}
	}
	return nil
}

// recentSpike compares recent spend with the coarse monthly estimate
// grand/(count/30). The comparison recent > factor*grand/(count/30) is
// evaluated as recent*count > factor*grand*30 so it stays exact.
func recentSpike(s Stats, th Thresholds) []Finding {
	lhs := s.RecentSpend.Mul(decimal.NewFromInt(int64(s.Count)))
	rhs := decimal.NewFromFloat(th.SpikeFactor).
		Mul(s.GrandTotal).
		Mul(decimal.NewFromInt(RecentWindowDays))
	if !lhs.GreaterThan(rhs) {
		return nil
	}
	f := alert(CodeSpendSpike, SeverityCritical)
	f.Amount = s.RecentSpend
	return []Finding{f}
}

func repeatedProduct(s Stats, th Thresholds) []Finding {
	if len(s.Products) == 0 || s.Products[0].Count < th.RepeatedProductCount {
		return nil
	}
	f := alert(CodeRepeatedProduct, SeverityWarning)
	f.Name = s.Products[0].Name
	f.Count = s.Products[0].Count
	return []Finding{f}
}
