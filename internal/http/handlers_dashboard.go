package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/dustin/go-humanize"

	"compras/internal/charts"
	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/log"
	"compras/internal/services"
)

// maxDetailRows caps the detail table; downloads carry every row.
const maxDetailRows = 500

// Chart placement: the charts section shows the overview kinds first,
// then the advanced ones. The heatmap is rendered as a table.
var (
	overviewCharts = []charts.Kind{charts.KindMonthly, charts.KindPlatforms, charts.KindCategories}
	advancedCharts = []charts.Kind{charts.KindWeekly, charts.KindPrices}
)

type chartView struct {
	Kind charts.Kind
	Data string
}

type dashboardView struct {
	T           uiText
	Snap        services.Snapshot
	Query       string
	ExportCSV   template.URL
	ExportXLSX  template.URL
	Selection   filter.Selection
	Invalid     []string
	OneSided    bool
	Rows        []core.Purchase
	Overview    []chartView
	Advanced    []chartView
	Top         *chartView
	Heatmap     *charts.Chart
	UploadLimit string
	CanReload   bool
}

func (s *Server) buildView(r *http.Request) dashboardView {
	sel, invalid := SelectionFromRequest(r)
	snap := s.svc.Snapshot(sel)

	byKind := make(map[charts.Kind]*charts.Chart, len(snap.Charts))
	for _, c := range snap.Charts {
		byKind[c.Kind] = c
	}
	collect := func(kinds []charts.Kind) []chartView {
		var out []chartView
		for _, k := range kinds {
			if c := byKind[k]; c != nil {
				out = append(out, s.chartView(r, c))
			}
		}
		return out
	}

	query := sel.Query().Encode()
	v := dashboardView{
		T:           s.text,
		Snap:        snap,
		Query:       query,
		ExportCSV:   exportURL("/export.csv", query),
		ExportXLSX:  exportURL("/export.xlsx", query),
		Selection:   sel,
		Invalid:     invalid,
		OneSided:    sel.OneSided(),
		Rows:        newestFirst(snap.Table.Rows(), maxDetailRows),
		Overview:    collect(overviewCharts),
		Advanced:    collect(advancedCharts),
		Heatmap:     byKind[charts.KindHeatmap],
		UploadLimit: humanize.IBytes(uint64(s.uploadMax)),
		CanReload:   s.svc.SourceName() != "",
	}
	if top := byKind[charts.KindTop]; top != nil {
		cv := s.chartView(r, top)
		v.Top = &cv
	}
	return v
}

func (s *Server) chartView(r *http.Request, c *charts.Chart) chartView {
	data, err := json.Marshal(c)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode chart",
			"kind", c.Kind, log.FieldError, err)
	}
	return chartView{Kind: c.Kind, Data: string(data)}
}

// newestFirst returns up to limit rows, latest date first.
func newestFirst(rows []core.Purchase, limit int) []core.Purchase {
	n := min(len(rows), limit)
	out := make([]core.Purchase, 0, n)
	for i := len(rows) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, rows[i])
	}
	return out
}

// handleIndex renders the full dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", s.buildView(r))
}

// handleDashboardPartial renders the sections for htmx refreshes.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard", s.buildView(r))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentTemplate)
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldOperation, log.OpRender,
			log.FieldError, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
