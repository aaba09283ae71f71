package reportshandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/auth"
	"acr/internal/domain/directory"
	"acr/internal/domain/scoring"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Service interface {
	Consolidated(ctx context.Context, q scoring.Query) (scoring.Consolidated, error)
	Totals(ctx context.Context, q scoring.TotalsQuery) ([]scoring.EmployeeTotals, error)
}

type Periods interface {
	ActivePeriod(ctx context.Context) (directory.Period, error)
	Period(ctx context.Context, id int64) (directory.Period, error)
}

type Handler struct {
	Service Service
	Periods Periods
	Perms   middleware.PermissionStore
	Log     *logger.Logger
}

func NewHandler(service Service, periods Periods, perms middleware.PermissionStore, log *logger.Logger) *Handler {
	return &Handler{Service: service, Periods: periods, Perms: perms, Log: logger.OrNop(log)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead, h.Perms))
		r.Get("/strategies", h.handleStrategies)
		r.Get("/consolidated", h.handleConsolidated)
		r.Get("/consolidated.pdf", h.handleConsolidatedPDF)
		r.Get("/totals", h.handleTotals)
	})
}

func (h *Handler) handleStrategies(w http.ResponseWriter, r *http.Request) {
	api.Success(w, scoring.Strategies(), middleware.GetRequestID(r.Context()))
}

// parseQuery reads periodId, method, institute and jobCategory; it writes the
// error response itself and returns false on failure.
func (h *Handler) parseQuery(w http.ResponseWriter, r *http.Request) (scoring.Query, bool) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	institutes, ok := shared.QueryIDs(r, "institute")
	if !ok {
		v.Add("institute", "must be a list of positive integers")
	}
	jobCategories, ok := shared.QueryIDs(r, "jobCategory")
	if !ok {
		v.Add("jobCategory", "must be a list of positive integers")
	}
	if v.Reject(w, reqID) {
		return scoring.Query{}, false
	}
	periodID, err := shared.ResolvePeriodID(r, h.Periods)
	if err != nil {
		// Explicit ids are not looked up here, so a miss means nothing is active.
		if errors.Is(err, directory.ErrPeriodNotFound) {
			api.Fail(w, http.StatusConflict, "no_active_period", "no active period", reqID)
			return scoring.Query{}, false
		}
		h.writeError(w, reqID, err)
		return scoring.Query{}, false
	}
	return scoring.Query{
		PeriodID:       periodID,
		Strategy:       r.URL.Query().Get("method"),
		InstituteIDs:   institutes,
		JobCategoryIDs: jobCategories,
	}, true
}

func (h *Handler) handleConsolidated(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Consolidated(r.Context(), q)
	if err != nil {
		h.writeError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleConsolidatedPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	period, err := h.Periods.Period(r.Context(), q.PeriodID)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	report, err := h.Service.Consolidated(r.Context(), q)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}

	var buf bytes.Buffer
	if err := scoring.RenderPDF(&buf, period.Name, report); err != nil {
		h.Log.Error("render consolidated pdf failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_render_failed", "failed to render report", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=consolidated-%d.pdf", q.PeriodID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("write consolidated pdf failed", "requestId", reqID, "err", err)
	}
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.Totals(r.Context(), scoring.TotalsQuery{
		PeriodID:       q.PeriodID,
		InstituteIDs:   q.InstituteIDs,
		JobCategoryIDs: q.JobCategoryIDs,
		Search:         r.URL.Query().Get("q"),
	})
	if err != nil {
		h.writeError(w, middleware.GetRequestID(r.Context()), err)
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidPeriodParam), errors.Is(err, scoring.ErrPeriodRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
	case errors.Is(err, directory.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "period not found", reqID)
	default:
		h.Log.Error("report request failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", reqID)
	}
}
