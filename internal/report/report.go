// Package report renders a filtered purchase table as a styled terminal
// summary for the compras-report command.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/insights"
	"compras/internal/metrics"
)

var (
	colorAccent   = lipgloss.Color("#BD93F9")
	colorMuted    = lipgloss.Color("#6272A4")
	colorSuccess  = lipgloss.Color("#50FA7B")
	colorWarning  = lipgloss.Color("#FFB86C")
	colorCritical = lipgloss.Color("#FF5555")
	colorInfo     = lipgloss.Color("#8BE9FD")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
	nameStyle    = lipgloss.NewStyle().Width(18)
	amountStyle  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	shareStyle   = lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Foreground(colorMuted)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// severityStyle colors a statement marker by severity.
func severityStyle(s insights.Severity) lipgloss.Style {
	switch s {
	case insights.SeverityCritical:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	case insights.SeverityWarning:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case insights.SeveritySuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	default:
		return lipgloss.NewStyle().Foreground(colorInfo)
	}
}

// Input is everything one report shows.
type Input struct {
	Source    string
	Selection filter.Selection
	Table     core.Table
	Settings  insights.Settings
}

type labels struct {
	Title, Source, Filters, NoFilters          string
	Metrics, Count, Total, Mean, Median, Std   string
	Max, Min, Range, Units                     string
	Platforms, Categories, Insights, Recs      string
	Alerts, Patterns, Weekday, Gap, Empty, Day string
}

var labelsES = labels{
	Title: "Dashboard de Compras Online", Source: "Origen", Filters: "Filtros", NoFilters: "sin filtros",
	Metrics: "Métricas Principales", Count: "Compras", Total: "Gasto total", Mean: "Gasto promedio",
	Median: "Mediana", Std: "Desviación estándar", Max: "Compra máxima", Min: "Compra mínima",
	Range: "Periodo", Units: "Unidades", Platforms: "Por plataforma", Categories: "Por categoría",
	Insights: "Insights", Recs: "Recomendaciones", Alerts: "Alertas", Patterns: "Patrones",
	Weekday: "Día preferido", Gap: "Días entre compras", Empty: "No hay compras para los filtros seleccionados.",
	Day: "días",
}

var labelsEN = labels{
	Title: "Online Purchases Dashboard", Source: "Source", Filters: "Filters", NoFilters: "no filters",
	Metrics: "Key Metrics", Count: "Purchases", Total: "Total spend", Mean: "Average spend",
	Median: "Median", Std: "Standard deviation", Max: "Largest purchase", Min: "Smallest purchase",
	Range: "Period", Units: "Units", Platforms: "By platform", Categories: "By category",
	Insights: "Insights", Recs: "Recommendations", Alerts: "Alerts", Patterns: "Patterns",
	Weekday: "Preferred day", Gap: "Days between purchases", Empty: "No purchases match the selected filters.",
	Day: "days",
}

func labelsFor(l core.Locale) labels {
	if l == core.LocaleEN {
		return labelsEN
	}
	return labelsES
}

// Write renders in to w.
func Write(w io.Writer, in Input) error {
	l := labelsFor(in.Settings.Locale)
	cur := in.Settings.Currency

	var b strings.Builder
	b.WriteString(titleStyle.Render(l.Title))
	b.WriteString("\n")
	row(&b, l.Source, in.Source)
	row(&b, l.Filters, describeSelection(in.Selection, l))

	if in.Table.IsEmpty() {
		b.WriteString("\n")
		b.WriteString(severityStyle(insights.SeverityWarning).Render(l.Empty))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	s := metrics.Summarize(in.Table)
	var m strings.Builder
	row(&m, l.Count, humanize.Comma(int64(s.Count)))
	row(&m, l.Units, humanize.Comma(int64(s.Units)))
	row(&m, l.Total, core.FormatMoney(cur, s.Total))
	row(&m, l.Mean, core.FormatMoney(cur, s.Mean))
	row(&m, l.Median, core.FormatFloatMoney(cur, s.Median))
	row(&m, l.Std, core.FormatFloatMoney(cur, s.StdDev))
	row(&m, l.Max, core.FormatMoney(cur, s.Max))
	row(&m, l.Min, core.FormatMoney(cur, s.Min))
	row(&m, l.Range, fmt.Sprintf("%s → %s (%d %s)", s.FirstDate, s.LastDate, s.SpanDays, l.Day))
	b.WriteString(sectionStyle.Render(l.Metrics))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(strings.TrimRight(m.String(), "\n")))
	b.WriteString("\n")

	groups(&b, l.Platforms, metrics.ByPlatform(in.Table), cur)
	groups(&b, l.Categories, metrics.ByCategory(in.Table), cur)

	rep := insights.NewEngine(in.Settings).Report(in.Table)
	statements(&b, l.Insights, rep.Insights, "")
	statements(&b, l.Recs, rep.Recommendations, rep.BalancedText)
	statements(&b, l.Alerts, rep.Alerts, rep.NoAlertsText)

	b.WriteString(sectionStyle.Render(l.Patterns))
	b.WriteString("\n")
	if rep.Patterns.PreferredWeekday != "" {
		row(&b, l.Weekday, rep.Patterns.PreferredWeekday)
	}
	if rep.Patterns.HasGap {
		row(&b, l.Gap, humanize.FormatFloat("#,###.#", rep.Patterns.MeanGapDays))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func describeSelection(sel filter.Selection, l labels) string {
	var parts []string
	if sel.Platform != "" {
		parts = append(parts, sel.Platform)
	}
	if sel.Category != "" {
		parts = append(parts, sel.Category)
	}
	if sel.HasDateRange() {
		parts = append(parts, sel.Start.String()+" → "+sel.End.String())
	}
	if len(parts) == 0 {
		return l.NoFilters
	}
	return strings.Join(parts, " · ")
}

func groups(b *strings.Builder, title string, gs []metrics.Group, cur string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for _, g := range gs {
		b.WriteString(nameStyle.Render(g.Name))
		b.WriteString(amountStyle.Render(core.FormatMoney(cur, g.Total)))
		b.WriteString(shareStyle.Render(humanize.FormatFloat("#,###.#", g.Share) + "%"))
		b.WriteString("\n")
	}
}

func statements(b *strings.Builder, title string, sts []insights.Statement, fallback string) {
	if len(sts) == 0 && fallback == "" {
		return
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	if len(sts) == 0 {
		b.WriteString("  " + severityStyle(insights.SeveritySuccess).Render("•") + " " + emphasize(fallback) + "\n")
		return
	}
	for _, st := range sts {
		b.WriteString("  " + severityStyle(st.Severity).Render("•") + " " + emphasize(st.Text) + "\n")
	}
}

// emphasize renders **bold** spans with the bold style.
func emphasize(s string) string {
	parts := strings.Split(s, "**")
	if len(parts) < 3 {
		return s
	}
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString(boldStyle.Render(p))
			continue
		}
		if i%2 == 1 {
			b.WriteString("**")
		}
		b.WriteString(p)
	}
	return b.String()
}
