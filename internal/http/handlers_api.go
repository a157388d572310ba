package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"compras/internal/charts"
	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/metrics"
	"compras/internal/services"
)

const (
	defaultPurchaseLimit = 100
	maxPurchaseLimit     = 5000
)

// selection decodes the filter parameters, answering 400 when a date is
// malformed.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (filter.Selection, bool) {
	sel, invalid := SelectionFromRequest(r)
	if len(invalid) > 0 {
		writeJSONError(w, r, http.StatusBadRequest, "invalid date parameter", invalid...)
		return sel, false
	}
	return sel, true
}

func (s *Server) handleAPIDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.svc.Snapshot(filter.Selection{}).Dataset)
}

type optionsResponse struct {
	Platforms  []string `json:"platforms"`
	Categories []string `json:"categories"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

func (s *Server) handleAPIOptions(w http.ResponseWriter, r *http.Request) {
	opts := s.svc.Options()
	resp := optionsResponse{Platforms: opts.Platforms, Categories: opts.Categories}
	if !opts.MinDate.IsZero() {
		resp.MinDate = opts.MinDate.String()
		resp.MaxDate = opts.MaxDate.String()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type summaryResponse struct {
	Dataset    services.DatasetInfo `json:"dataset"`
	Summary    metrics.Summary      `json:"summary"`
	Platforms  []metrics.Group      `json:"platforms"`
	Categories []metrics.Group      `json:"categories"`
	Empty      bool                 `json:"empty"`
	NoMatches  bool                 `json:"no_matches"`
	Message    string               `json:"message,omitempty"`
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	snap := s.svc.Snapshot(sel)
	writeJSON(w, r, http.StatusOK, summaryResponse{
		Dataset:    snap.Dataset,
		Summary:    snap.Summary,
		Platforms:  snap.Platforms,
		Categories: snap.Categories,
		Empty:      snap.Empty,
		NoMatches:  snap.NoMatches,
		Message:    snap.Message,
	})
}

// handleAPICharts returns every non-empty chart for the selection.
func (s *Server) handleAPICharts(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	out := s.svc.Snapshot(sel).Charts
	if out == nil {
		out = []*charts.Chart{}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleAPIChart returns one chart. An empty selection answers 204, the
// "no chart" signal.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	kind := charts.Kind(chi.URLParam(r, "kind"))
	c, err := s.svc.Chart(kind, sel)
	if errors.Is(err, charts.ErrUnknownKind) {
		writeJSONError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeJSONError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if c == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleAPIInsights(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, s.svc.Insights(sel))
}

type purchaseJSON struct {
	Date      string `json:"date"`
	Platform  string `json:"platform"`
	Product   string `json:"product"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	MonthKey  string `json:"month_key"`
	Weekday   string `json:"weekday"`
}

type purchasesResponse struct {
	Total     int            `json:"total"`
	Returned  int            `json:"returned"`
	Purchases []purchaseJSON `json:"purchases"`
}

// handleAPIPurchases lists filtered purchases in date order, capped by
// the limit parameter.
func (s *Server) handleAPIPurchases(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selection(w, r)
	if !ok {
		return
	}
	limit := ParseLimit(r.URL.Query(), "limit", defaultPurchaseLimit, maxPurchaseLimit)
	table := s.svc.Filtered(sel)
	rows := table.Rows()
	if len(rows) > limit {
		rows = rows[:limit]
	}
	locale := s.svc.Settings().Locale
	resp := purchasesResponse{
		Total:     table.Len(),
		Returned:  len(rows),
		Purchases: make([]purchaseJSON, 0, len(rows)),
	}
	for _, p := range rows {
		resp.Purchases = append(resp.Purchases, toPurchaseJSON(p, locale))
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func toPurchaseJSON(p core.Purchase, locale core.Locale) purchaseJSON {
	return purchaseJSON{
		Date:      p.Date.String(),
		Platform:  p.Platform,
		Product:   p.Product,
		Category:  p.Category,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice.StringFixed(2),
		LineTotal: p.LineTotal.StringFixed(2),
		MonthKey:  p.MonthKey,
		Weekday:   p.WeekdayName(locale),
	}
}
