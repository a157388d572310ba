package http

import (
	"fmt"
	"html/template"
	"math"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"compras/internal/charts"
	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/insights"
	"compras/internal/metrics"
)

var boldMarkup = regexp.MustCompile(`\*\*(.+?)\*\*`)

// richText escapes a statement and renders its **bold** spans.
func richText(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(boldMarkup.ReplaceAllString(escaped, "<strong>$1</strong>"))
}

// heatStyle shades a heatmap cell relative to the largest cell.
func heatStyle(v, max float64) template.CSS {
	alpha := 0.0
	if max > 0 && v > 0 {
		alpha = math.Max(0.08, v/max)
	}
	return template.CSS(fmt.Sprintf("background-color: rgba(79, 70, 229, %.2f)", alpha))
}

func heatMax(h *charts.Heatmap) float64 {
	if h == nil {
		return 0
	}
	var max float64
	for _, row := range h.Values {
		for _, v := range row {
			max = math.Max(max, v)
		}
	}
	return max
}

// groupTable is the view of one breakdown table.
type groupTable struct {
	Title  string
	Groups []metrics.Group
	T      uiText
}

// exportURL links a download to the current selection.
func exportURL(path, query string) template.URL {
	if query == "" {
		return template.URL(path)
	}
	return template.URL(path + "?" + query)
}

func templateFuncs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string { return core.FormatMoney(currency, d) },
		"moneyf": func(f float64) string {
			return core.FormatFloatMoney(currency, f)
		},
		"pct":      func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"decimal1": func(f float64) string { return humanize.FormatFloat("#,###.#", f) },
		"comma":    func(n int) string { return humanize.Comma(int64(n)) },
		"date": func(d core.Date) string {
			if d.IsZero() {
				return ""
			}
			return d.String()
		},
		"query": func(sel filter.Selection) string { return sel.Query().Encode() },
		"severity": func(s insights.Severity) string {
			return "severity-" + string(s)
		},
		"rich":    richText,
		"heat":    heatStyle,
		"heatMax": heatMax,
		"groupTable": func(title string, groups []metrics.Group, t uiText) groupTable {
			return groupTable{Title: title, Groups: groups, T: t}
		},
		"selected": func(a, b string) bool { return a == b || (b == "" && a == filter.All) },
	}
}
