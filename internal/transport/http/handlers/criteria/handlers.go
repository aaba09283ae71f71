package criteriahandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/audit"
	"acr/internal/domain/auth"
	"acr/internal/domain/criteria"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, appraisalTypeID int64) ([]criteria.Effective, error)
	SetOverride(ctx context.Context, appraisalTypeID int64, name string, value bool) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.Auditor
	Log     *logger.Logger
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.Auditor, log *logger.Logger) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor, Log: logger.OrNop(log)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisal-types/{typeID}/criteria", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCriteriaRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCriteriaWrite, h.Perms)).Put("/{name}", h.handleSet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	typeID, ok := shared.PathID(r, "typeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_appraisal_type", "appraisal type id must be a positive integer", reqID)
		return
	}
	list, err := h.Service.List(r.Context(), typeID)
	if err != nil {
		h.Log.Error("list criteria failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "criteria_list_failed", "failed to list criteria", reqID)
		return
	}
	api.Success(w, list, reqID)
}

type overridePayload struct {
	Value *bool `json:"value" validate:"required"`
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	typeID, ok := shared.PathID(r, "typeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_appraisal_type", "appraisal type id must be a positive integer", reqID)
		return
	}
	name := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "name")))

	var payload overridePayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Service.SetOverride(r.Context(), typeID, name, *payload.Value); err != nil {
		if errors.Is(err, criteria.ErrUnknownCriterion) {
			api.Fail(w, http.StatusNotFound, "unknown_criterion", "criterion not registered", reqID)
			return
		}
		if errors.Is(err, criteria.ErrAppraisalTypeNotFound) {
			api.Fail(w, http.StatusNotFound, "appraisal_type_not_found", "appraisal type not found", reqID)
			return
		}
		h.Log.Error("set criterion override failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "criteria_update_failed", "failed to update criterion", reqID)
		return
	}

	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionCriteriaOverride, "criteria_override",
		strconv.FormatInt(typeID, 10)+":"+name, nil, map[string]any{"name": name, "value": *payload.Value})
	api.Success(w, map[string]any{"appraisalTypeId": typeID, "name": name, "value": *payload.Value}, reqID)
}
