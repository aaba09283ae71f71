package exclusionhandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/audit"
	"acr/internal/domain/auth"
	"acr/internal/domain/directory"
	"acr/internal/domain/exclusion"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Service interface {
	Add(ctx context.Context, rec exclusion.Record) (exclusion.Record, error)
	List(ctx context.Context, ownerUserID, periodID int64) ([]exclusion.Record, error)
	Remove(ctx context.Context, ownerUserID, periodID, id int64) error
}

type Handler struct {
	Service Service
	Periods shared.ActivePeriodSource
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Log     *logger.Logger
}

func NewHandler(service Service, periods shared.ActivePeriodSource, perms middleware.PermissionStore, auditor shared.Auditor, log *logger.Logger) *Handler {
	return &Handler{Service: service, Periods: periods, Perms: perms, Audit: auditor, Log: logger.OrNop(log)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/exclusions", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermExclusionsManage, h.Perms))
		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
		r.Delete("/{exclusionID}", h.handleRemove)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	periodID, err := shared.ResolvePeriodID(r, h.Periods)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	records, err := h.Service.List(r.Context(), user.UserID, periodID)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	api.Success(w, records, reqID)
}

type addPayload struct {
	PeriodID        int64  `json:"periodId" validate:"gte=0"`
	AppraisalTypeID int64  `json:"appraisalTypeId" validate:"required,gt=0"`
	EmployeeID      int64  `json:"employeeId" validate:"required,gt=0"`
	Description     string `json:"description" validate:"max=500"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload addPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, reqID) {
		return
	}

	periodID := payload.PeriodID
	if periodID == 0 {
		active, err := h.Periods.ActivePeriod(r.Context())
		if err != nil {
			h.writeError(w, reqID, err)
			return
		}
		periodID = active.ID
	}

	created, err := h.Service.Add(r.Context(), exclusion.Record{
		OwnerUserID:     user.UserID,
		PeriodID:        periodID,
		AppraisalTypeID: payload.AppraisalTypeID,
		EmployeeID:      payload.EmployeeID,
		Description:     payload.Description,
	})
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionExclusionAdd, "exclusion", strconv.FormatInt(created.ID, 10), nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "exclusionID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_exclusion", "exclusion id must be a positive integer", reqID)
		return
	}
	periodID, err := shared.ResolvePeriodID(r, h.Periods)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	if err := h.Service.Remove(r.Context(), user.UserID, periodID, id); err != nil {
		h.writeError(w, reqID, err)
		return
	}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionExclusionRemove, "exclusion", strconv.FormatInt(id, 10),
		map[string]int64{"id": id, "periodId": periodID}, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidPeriodParam):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
	case errors.Is(err, directory.ErrPeriodNotFound):
		api.Fail(w, http.StatusConflict, "no_active_period", "no active period", reqID)
	case errors.Is(err, exclusion.ErrInvalidExclusion):
		api.Fail(w, http.StatusBadRequest, "invalid_exclusion", err.Error(), reqID)
	case errors.Is(err, exclusion.ErrDuplicateExclusion):
		api.Fail(w, http.StatusConflict, "duplicate_exclusion", err.Error(), reqID)
	case errors.Is(err, exclusion.ErrExclusionNotFound):
		api.Fail(w, http.StatusNotFound, "exclusion_not_found", err.Error(), reqID)
	default:
		h.Log.Error("exclusion request failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "exclusion_failed", "exclusion request failed", reqID)
	}
}
