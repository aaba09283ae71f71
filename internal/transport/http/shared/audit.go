package shared

import (
	"context"
	"net/http"

	"acr/internal/platform/logger"
	"acr/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, actorID int64, action, entityType, entityID, requestID, ip string, before, after any) error
}

// RecordAudit writes an audit event for the current caller. A failed audit write
// is logged and does not fail the request; the change is already committed.
func RecordAudit(r *http.Request, auditor Auditor, log *logger.Logger, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if err := auditor.Record(r.Context(), user.UserID, action, entityType, entityID, reqID, middleware.ClientIP(r), before, after); err != nil {
		logger.OrNop(log).Warn("audit record failed", "action", action, "entityId", entityID, "requestId", reqID, "err", err)
	}
}
