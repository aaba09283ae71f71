package appraisalhandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/appraisal"
	"acr/internal/domain/audit"
	"acr/internal/domain/auth"
	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Recorder interface {
	RecordAttempt(ctx context.Context, req appraisal.RecordRequest) (appraisal.Receipt, error)
	RecordAnswers(ctx context.Context, req appraisal.AnswerRequest) (appraisal.Receipt, error)
}

type AttemptCounter interface {
	AttemptRecorded()
}

type Handler struct {
	Recorder Recorder
	Periods  shared.ActivePeriodSource
	Perms    middleware.PermissionStore
	Audit    shared.Auditor
	Counter  AttemptCounter
	Log      *logger.Logger
}

func NewHandler(recorder Recorder, periods shared.ActivePeriodSource, perms middleware.PermissionStore, auditor shared.Auditor, counter AttemptCounter, log *logger.Logger) *Handler {
	return &Handler{Recorder: recorder, Periods: periods, Perms: perms, Audit: auditor, Counter: counter, Log: logger.OrNop(log)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAttemptsWrite, h.Perms)).
		Post("/appraisal-types/{typeID}/employees/{employeeID}/attempts", h.handleRecord)
}

type itemScorePayload struct {
	ItemID        int64 `json:"itemId" validate:"required,gt=0"`
	MaxScore      int   `json:"maxScore" validate:"gte=0"`
	ObtainedScore int   `json:"obtainedScore" validate:"gte=0"`
}

// recordPayload carries either raw answers per scale item or explicit item scores.
type recordPayload struct {
	PeriodID      int64              `json:"periodId" validate:"gte=0"`
	InstituteID   int64              `json:"instituteId" validate:"required,gt=0"`
	JobCategoryID int64              `json:"jobCategoryId" validate:"required,gt=0"`
	Answers       map[int64]int      `json:"answers"`
	Items         []itemScorePayload `json:"items" validate:"dive"`
	Remarks       string             `json:"remarks" validate:"max=2000"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	v := shared.NewValidator()
	typeID, ok := shared.PathID(r, "typeID")
	if !ok {
		v.Add("typeID", "must be a positive integer")
	}
	employeeID, ok := shared.PathID(r, "employeeID")
	if !ok {
		v.Add("employeeID", "must be a positive integer")
	}
	if v.Reject(w, reqID) {
		return
	}

	var payload recordPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.FailDecode(w, reqID, err)
		return
	}
	v.Struct(payload)
	switch {
	case len(payload.Answers) == 0 && len(payload.Items) == 0:
		v.Add("answers", "either answers or items is required")
	case len(payload.Answers) > 0 && len(payload.Items) > 0:
		v.Add("items", "send either answers or items, not both")
	}
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

	key := appraisal.AttemptKey{PeriodID: periodID, AppraisalTypeID: typeID, EmployeeID: employeeID}
	var (
		receipt appraisal.Receipt
		err     error
	)
	if len(payload.Answers) > 0 {
		receipt, err = h.Recorder.RecordAnswers(r.Context(), appraisal.AnswerRequest{
			AttemptKey:    key,
			InstituteID:   payload.InstituteID,
			JobCategoryID: payload.JobCategoryID,
			Answers:       payload.Answers,
			Remarks:       payload.Remarks,
			RecordedBy:    user.UserID,
		})
	} else {
		items := make([]appraisal.ItemScore, 0, len(payload.Items))
		for _, it := range payload.Items {
			items = append(items, appraisal.ItemScore{ItemID: it.ItemID, MaxScore: it.MaxScore, ObtainedScore: it.ObtainedScore})
		}
		receipt, err = h.Recorder.RecordAttempt(r.Context(), appraisal.RecordRequest{
			AttemptKey:    key,
			InstituteID:   payload.InstituteID,
			JobCategoryID: payload.JobCategoryID,
			Items:         items,
			Remarks:       payload.Remarks,
			RecordedBy:    user.UserID,
		})
	}
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}

	if h.Counter != nil {
		h.Counter.AttemptRecorded()
	}
	shared.RecordAudit(r, h.Audit, h.Log, audit.ActionAttemptRecord, "appraisal_attempt",
		key.String()+":"+strconv.Itoa(receipt.AttemptNo), nil, receipt)
	api.Created(w, receipt, reqID)
}

func (h *Handler) writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, appraisal.ErrInvalidKey):
		api.Fail(w, http.StatusBadRequest, "invalid_attempt_key", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrUnknownReference) && errors.Is(err, directory.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "period not found", reqID)
	case errors.Is(err, directory.ErrPeriodNotFound):
		api.Fail(w, http.StatusConflict, "no_active_period", "no active period", reqID)
	case errors.Is(err, directory.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, directory.ErrAppraisalTypeNotFound):
		api.Fail(w, http.StatusNotFound, "appraisal_type_not_found", "appraisal type not found", reqID)
	case errors.Is(err, appraisal.ErrUnknownReference):
		api.Fail(w, http.StatusUnprocessableEntity, "unknown_reference", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrDuplicateAttempt):
		api.Fail(w, http.StatusConflict, "duplicate_attempt", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrScaleMissing):
		api.Fail(w, http.StatusConflict, "scale_missing", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrObtainedExceedsMax):
		api.Fail(w, http.StatusUnprocessableEntity, "obtained_exceeds_max", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrNoItems),
		errors.Is(err, appraisal.ErrDuplicateItem),
		errors.Is(err, appraisal.ErrInvalidScore),
		errors.Is(err, appraisal.ErrUnansweredItems),
		errors.Is(err, appraisal.ErrUnknownItem):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_items", err.Error(), reqID)
	case errors.Is(err, appraisal.ErrInvalidSelection):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_selection", err.Error(), reqID)
	default:
		h.Log.Error("record attempt failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "record_failed", "failed to record appraisal", reqID)
	}
}
