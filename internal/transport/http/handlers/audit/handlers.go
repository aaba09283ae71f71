package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"acr/internal/domain/audit"
	"acr/internal/domain/auth"
	"acr/internal/platform/logger"
	"acr/internal/transport/http/api"
	"acr/internal/transport/http/middleware"
	"acr/internal/transport/http/shared"
)

type Service interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

const exportLimit = 10000

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Log     *logger.Logger
}

func NewHandler(service Service, perms middleware.PermissionStore, log *logger.Logger) *Handler {
	return &Handler{Service: service, Perms: perms, Log: logger.OrNop(log)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermAuditRead, h.Perms))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
	})
}

func parseFilter(r *http.Request) (audit.Filter, bool) {
	actor, ok := shared.QueryID(r, "actorUserId")
	if !ok {
		return audit.Filter{}, false
	}
	return audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorID:    actor,
	}, true
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_actor", "actorUserId must be a positive integer", reqID)
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	includeDetails := r.URL.Query().Get("includeDetails") == "true"

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		h.Log.Warn("audit count failed", "requestId", reqID, "err", err)
	}
	events, err := h.Service.List(r.Context(), filter, includeDetails, page.Limit, page.Offset)
	if err != nil {
		h.Log.Error("audit list failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", reqID)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, events, reqID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := parseFilter(r)
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_actor", "actorUserId must be a positive integer", reqID)
		return
	}
	events, err := h.Service.List(r.Context(), filter, false, exportLimit, 0)
	if err != nil {
		h.Log.Error("audit export failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		h.Log.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{
			strconv.FormatInt(evt.ID, 10),
			strconv.FormatInt(evt.ActorID, 10),
			evt.Action,
			evt.EntityType,
			evt.EntityID,
			evt.RequestID,
			evt.IP,
			evt.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			h.Log.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.Log.Warn("audit export flush failed", "err", err)
	}
}
