package assesseehandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/assessee"
	"acr/internal/domain/auth"
	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Resolver interface {
	Resolve(ctx context.Context, req assessee.Request) ([]assessee.Assessee, error)
}

type Handler struct {
	Resolver Resolver
	Periods  shared.ActivePeriodSource
	Perms    middleware.PermissionStore
	Log      *logger.Logger
}

func NewHandler(resolver Resolver, periods shared.ActivePeriodSource, perms middleware.PermissionStore, log *logger.Logger) *Handler {
	return &Handler{Resolver: resolver, Periods: periods, Perms: perms, Log: logger.OrNop(log)}
}

type response struct {
	PeriodID        int64               `json:"periodId"`
	AppraisalTypeID int64               `json:"appraisalTypeId"`
	Assessees       []assessee.Assessee `json:"assessees"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAssesseesRead, h.Perms)).
		Get("/appraisal-types/{typeID}/assessees", h.handleResolve)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	typeID, ok := shared.PathID(r, "typeID")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_appraisal_type", "appraisal type id must be a positive integer", reqID)
		return
	}
	periodID, err := shared.ResolvePeriodID(r, h.Periods)
	if err != nil {
		writeError(w, reqID, err, h.Log)
		return
	}

	out, err := h.Resolver.Resolve(r.Context(), assessee.Request{
		EvaluatorUserID: user.UserID,
		AppraisalTypeID: typeID,
		PeriodID:        periodID,
	})
	if err != nil {
		writeError(w, reqID, err, h.Log)
		return
	}
	if out == nil {
		out = []assessee.Assessee{}
	}
	api.Success(w, response{PeriodID: periodID, AppraisalTypeID: typeID, Assessees: out}, reqID)
}

func writeError(w http.ResponseWriter, reqID string, err error, log *logger.Logger) {
	switch {
	case errors.Is(err, shared.ErrInvalidPeriodParam):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
	case errors.Is(err, assessee.ErrAppraisalTypeNotFound), errors.Is(err, directory.ErrAppraisalTypeNotFound):
		api.Fail(w, http.StatusNotFound, "appraisal_type_not_found", "appraisal type not found", reqID)
	case errors.Is(err, assessee.ErrNotAuthorizedAssessor):
		api.Fail(w, http.StatusForbidden, "not_authorized_assessor", "you are not registered as an assessor", reqID)
	case errors.Is(err, assessee.ErrNotAuthorizedInspector):
		api.Fail(w, http.StatusForbidden, "not_authorized_inspector", "you are not registered as an inspector", reqID)
	case errors.Is(err, assessee.ErrNoActivePeriod), errors.Is(err, directory.ErrPeriodNotFound):
		api.Fail(w, http.StatusConflict, "no_active_period", "no active period", reqID)
	case errors.Is(err, assessee.ErrScheduleNotOpen):
		api.Fail(w, http.StatusConflict, "schedule_not_open", err.Error(), reqID)
	case errors.Is(err, assessee.ErrProfileMissingIdentityCode):
		api.Fail(w, http.StatusConflict, "profile_missing_identity_code", "your profile has no employee code", reqID)
	case errors.Is(err, assessee.ErrExclusionSettingMisconfigured):
		api.Fail(w, http.StatusConflict, "exclusion_setting_misconfigured", "self appraisal requires EXCLUDE_SELF to be enabled", reqID)
	default:
		log.Error("resolve assessees failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "resolve_failed", "failed to resolve assessees", reqID)
	}
}
