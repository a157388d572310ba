package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"compras/internal/core"
	"compras/internal/export"
	"compras/internal/log"
)

// Download names of the filtered table.
const (
	exportBaseName = "compras_filtradas"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, exportBaseName+".csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, exportBaseName+".xlsx", xlsxMIME, export.WriteXLSX)
}

// export writes the filtered table through write. The document is built
// in memory so a failure still yields a clean 500.
func (s *Server) export(w http.ResponseWriter, r *http.Request, filename, contentType string,
	write func(io.Writer, core.Table, core.Locale) error) {
	sel, invalid := SelectionFromRequest(r)
	if len(invalid) > 0 {
		http.Error(w, "invalid date parameter", http.StatusBadRequest)
		return
	}
	table := s.svc.Filtered(sel)
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentExport)

	var buf bytes.Buffer
	if err := write(&buf, table, s.svc.Settings().Locale); err != nil {
		logger.ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport,
			"file", filename,
			log.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
	logger.InfoContext(r.Context(), "Export served",
		log.FieldOperation, log.OpExport,
		"file", filename,
		log.FieldRows, table.Len())
}

// handleUpload replaces the dataset with an uploaded document. A document
// that fails to parse still replaces it, with an empty table and warning.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := ReadUpload(w, r, s.uploadMax)
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		s.uploadRefused(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf(s.text.UploadTooLarge, humanize.IBytes(uint64(s.uploadMax))))
		return
	case errors.Is(err, ErrMissingFile):
		s.uploadRefused(w, r, http.StatusBadRequest, s.text.UploadMissing)
		return
	case err != nil:
		log.FromContext(r.Context()).WarnContext(r.Context(), "Upload rejected", log.FieldError, err)
		s.uploadRefused(w, r, http.StatusBadRequest, s.text.UploadFailed)
		return
	}

	ds, loadErr := s.svc.Upload(r.Context(), up.Name, up.Data)
	s.afterLoad(w, r, ds, loadErr, s.text.UploadOK, s.text.UploadFailed)
}

// handleReload reads the configured source again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	ds, err := s.svc.Reload(ctx)
	s.afterLoad(w, r, ds, err, s.text.ReloadOK, s.text.ReloadFailed)
}

// afterLoad answers htmx with events that refresh the page, and plain
// form posts with a redirect back to the dashboard.
func (s *Server) afterLoad(w http.ResponseWriter, r *http.Request, ds core.Dataset, err error, okText, failText string) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	resp := NewHTMXResponse().TriggerDatasetLoaded(ds.ID, ds.Table.Len())
	if err != nil {
		msg := failText
		if ds.Warning != "" {
			msg = ds.Warning
		}
		resp.TriggerWarningNotification(msg)
	} else {
		resp.TriggerSuccessNotification(fmt.Sprintf(okText, ds.Table.Len()))
	}
	resp.Write(w)
}

func (s *Server) uploadRefused(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		ErrorResponse(status, msg).TriggerWarningNotification(msg).Write(w)
		return
	}
	http.Error(w, msg, status)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the dataset store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.store == nil {
		checks["store"] = "not_configured"
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	ds := s.svc.Dataset()
	checks["dataset"] = map[string]any{
		"id":      ds.ID,
		"rows":    ds.Table.Len(),
		"warning": ds.Warning,
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	ds := s.svc.Dataset()

	metric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric(w, "http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric(w, "http_response_time_avg_us", "gauge", "Average response time in microseconds", traceMetrics.AverageResponseTime)
	metric(w, "rate_limit_hits_total", "counter", "Total rate limit hits", rateMetrics.TotalHits)
	metric(w, "active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	metric(w, "suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric(w, "dataset_rows", "gauge", "Purchases in the active dataset", int64(ds.Table.Len()))
	if s.cacheStats != nil {
		st := s.cacheStats()
		metric(w, "ingest_cache_entries", "gauge", "Parsed tables held by the ingest cache", int64(st.Entries))
		metric(w, "ingest_cache_hits_total", "counter", "Ingest cache hits", st.Hits)
		metric(w, "ingest_cache_misses_total", "counter", "Ingest cache misses", st.Misses)
		metric(w, "ingest_cache_evictions_total", "counter", "Ingest cache evictions", st.Evictions)
		fmt.Fprintf(w, "# HELP ingest_cache_hit_ratio Share of ingest lookups served from the cache\n# TYPE ingest_cache_hit_ratio gauge\ningest_cache_hit_ratio %.4f\n", st.HitRatio())
	}
	metric(w, "uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

func metric(w io.Writer, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}
