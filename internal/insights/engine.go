package insights

import (
	"compras/internal/core"
)

// Engine runs the three stages over a table.
type Engine struct {
	Settings Settings
}

func NewEngine(s Settings) *Engine {
	return &Engine{Settings: s}
}

// Generate returns the statements for t in rule order; nil when t is
// empty.
func (e *Engine) Generate(t core.Table) []Statement {
	return e.Renderer().Render(Evaluate(Compute(t), e.Settings.Thresholds))
}

func (e *Engine) Renderer() Renderer {
	return Renderer{Settings: e.Settings}
}

// Report groups statements the way the dashboard shows them.
type Report struct {
	Insights        []Statement `json:"insights"`
	Recommendations []Statement `json:"recommendations"`
	Alerts          []Statement `json:"alerts"`
	Patterns        Patterns    `json:"patterns"`

	// Fallback texts for empty groups.
	BalancedText string `json:"balanced_text,omitempty"`
	NoAlertsText string `json:"no_alerts_text,omitempty"`
}

// Patterns is the detected-patterns panel.
type Patterns struct {
	PreferredWeekday string  `json:"preferred_weekday,omitempty"`
	MeanGapDays      float64 `json:"mean_gap_days"`
	HasGap           bool    `json:"has_gap"`
	Purchases        int     `json:"purchases"`
}

// Report computes the grouped view of t.
func (e *Engine) Report(t core.Table) Report {
	stats := Compute(t)
	r := e.Renderer()
	var rep Report
	for _, st := range r.Render(Evaluate(stats, e.Settings.Thresholds)) {
		switch st.Kind {
		case KindRecommendation:
			rep.Recommendations = append(rep.Recommendations, st)
		case KindAlert:
			rep.Alerts = append(rep.Alerts, st)
		default:
			rep.Insights = append(rep.Insights, st)
		}
	}
	if stats.Count == 0 {
		return rep
	}
	rep.Patterns = Patterns{
		PreferredWeekday: core.WeekdayName(stats.PreferredWeekday, e.Settings.Locale),
		MeanGapDays:      stats.MeanGapDays,
		HasGap:           stats.HasGap,
		Purchases:        stats.Count,
	}
	if len(rep.Recommendations) == 0 {
		rep.BalancedText = r.BalancedFallback()
	}
	if len(rep.Alerts) == 0 {
		rep.NoAlertsText = r.NoAlertsFallback()
	}
	return rep
}
