package directoryhandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/auth"
	"acr/internal/domain/directory"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
)

type Service interface {
	ActivePeriod(ctx context.Context) (directory.Period, error)
	LookupEmployees(ctx context.Context, query string, limit int) ([]directory.EmployeeRef, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermPeriodsRead, h.Perms)).Get("/periods/active", h.handleActivePeriod)
	r.With(middleware.RequirePermission(auth.PermEmployeesLookup, h.Perms)).Get("/employees/lookup", h.handleLookup)
}

func (h *Handler) handleActivePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Service.ActivePeriod(r.Context())
	if errors.Is(err, directory.ErrPeriodNotFound) {
		api.Fail(w, http.StatusConflict, "no_active_period", "no active period", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_lookup_failed", "failed to resolve active period", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			api.Fail(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", middleware.GetRequestID(r.Context()))
			return
		}
		limit = v
	}
	refs, err := h.Service.LookupEmployees(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to search employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, refs, middleware.GetRequestID(r.Context()))
}
