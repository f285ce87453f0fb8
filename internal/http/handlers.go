package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"typhoondash/internal/dashboard"
	"typhoondash/internal/export"
	applog "typhoondash/internal/log"
	"typhoondash/internal/source"
)

// User-facing messages.
const (
	msgInvalidRange = "연도 범위가 올바르지 않습니다."
	msgUnavailable  = "데이터를 불러올 수 없습니다. 잠시 후 다시 시도해 주세요."
	msgInternal     = "요청을 처리하지 못했습니다."
)

type pageData struct {
	dashboard.View
	Backend   string
	ExportURL string
}

type errorPage struct {
	PageTitle string
	Title     string
	Status    int
	Message   string
}

// statusFor maps handler errors onto a status code and message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest, msgInvalidRange
	case errors.Is(err, source.ErrDataUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, msgUnavailable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// buildView resolves the requested range against the service default and
// builds the dashboard for it.
func (s *Server) buildView(ctx context.Context, r *http.Request) (dashboard.View, error) {
	def, err := s.svc.DefaultRange(ctx)
	if err != nil {
		return dashboard.View{}, err
	}
	yr, err := ParseYearRange(r.URL.Query(), def)
	if err != nil {
		return dashboard.View{}, err
	}
	return s.svc.Dashboard(ctx, yr)
}

func (s *Server) logFailure(ctx context.Context, op string, err error) {
	status, _ := statusFor(err)
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentHTTP)
	if status >= 500 {
		logger.ErrorContext(ctx, "Request failed", applog.FieldOperation, op, applog.FieldError, err)
		return
	}
	logger.WarnContext(ctx, "Request rejected", applog.FieldOperation, op, applog.FieldError, err)
}

// handleIndex renders the full dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	view, err := s.buildView(ctx, r)
	if err != nil {
		s.logFailure(ctx, applog.OpRender, err)
		status, msg := statusFor(err)
		s.renderError(w, r, status, msg)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", s.pageData(view)); err != nil {
		s.tmplLog.ErrorContext(ctx, "Index template execution failed", applog.FieldError, err, "template", "index.html")
		s.renderError(w, r, http.StatusInternalServerError, msgInternal)
		return
	}
	s.metrics.DashboardRenders.WithLabelValues("html").Inc()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleDashboardPartial renders the dashboard body for an htmx swap.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	view, err := s.buildView(ctx, r)
	if err != nil {
		s.logFailure(ctx, applog.OpRender, err)
		status, msg := statusFor(err)
		ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard", s.pageData(view)); err != nil {
		s.tmplLog.ErrorContext(ctx, "Dashboard template execution failed", applog.FieldError, err, "template", "dashboard")
		InternalServerError(msgInternal).Write(w)
		return
	}
	s.metrics.DashboardRenders.WithLabelValues("html").Inc()

	NewHTMXResponse().
		PushURL(view.Range.Selected).
		BodyHTML(buf.Bytes()).
		Write(w)
}

// handleDashboardJSON serves the dashboard view as JSON.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	view, err := s.buildView(ctx, r)
	if err != nil {
		s.logFailure(ctx, applog.OpRender, err)
		status, msg := statusFor(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	s.metrics.DashboardRenders.WithLabelValues("json").Inc()
	writeJSON(w, http.StatusOK, view)
}

// handleExport downloads the filtered table as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	view, err := s.buildView(ctx, r)
	if err != nil {
		s.logFailure(ctx, applog.OpExport, err)
		status, msg := statusFor(err)
		http.Error(w, msg, status)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, view.Rows); err != nil {
		s.logFailure(ctx, applog.OpExport, err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	s.metrics.DashboardRenders.WithLabelValues("xlsx").Inc()
	applog.FromContext(ctx).WithComponent(applog.ComponentExport).InfoContext(ctx, "Workbook exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldYearFrom, view.Range.Selected.From,
		applog.FieldYearTo, view.Range.Selected.To,
		applog.FieldRows, len(view.Rows))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(view.Range.Selected)))
	_, _ = w.Write(buf.Bytes())
}

// handleReload drops the cached dataset and loads it again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.svc.Reload(ctx); err != nil {
		s.logFailure(ctx, applog.OpReload, err)
		status, msg := statusFor(err)
		ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
		return
	}
	table, err := s.svc.Table(ctx)
	if err != nil {
		s.logFailure(ctx, applog.OpReload, err)
		status, msg := statusFor(err)
		ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
		return
	}

	minYear, maxYear := table.Bounds()
	msg := fmt.Sprintf("%d~%d년 데이터 %d건을 다시 불러왔습니다.", minYear, maxYear, table.Len())
	NewHTMXResponse().
		TriggerDatasetReloaded(minYear, maxYear).
		TriggerSuccessNotification(msg).
		BodyHTML([]byte(`<span class="notice">` + msg + `</span>`)).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"backend": s.svc.Backend(),
		"uptime":  s.clock.Since(s.started).String(),
	})
}

// handleReady reports whether the dataset can be served.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]interface{}{
		"templates": "ok",
		"rate_limiter": map[string]interface{}{
			"active_clients": s.reloadLimiter.ActiveClients(),
		},
	}

	if err := s.svc.Ready(ctx); err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":  status,
		"backend": s.svc.Backend(),
		"checks":  checks,
	})
}

func (s *Server) pageData(view dashboard.View) pageData {
	return pageData{
		View:      view,
		Backend:   s.svc.Backend(),
		ExportURL: "/export.xlsx?" + RangeQuery(view.Range.Selected),
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, "error.html", errorPage{
		PageTitle: dashboard.PageTitle,
		Title:     dashboard.Heading,
		Status:    status,
		Message:   message,
	})
	if err != nil {
		s.tmplLog.ErrorContext(r.Context(), "Error template execution failed", applog.FieldError, err)
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
