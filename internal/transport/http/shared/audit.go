package shared

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"paydesk/internal/domain/audit"
	"paydesk/internal/platform/requestctx"
	"paydesk/internal/transport/http/middleware"
)

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// RecordAudit stamps e with the caller, request id and client address. A
// failed write is logged and does not fail the request.
func RecordAudit(r *http.Request, rec AuditRecorder, e audit.Entry) {
	if rec == nil {
		return
	}
	if user, ok := middleware.GetUser(r.Context()); ok && e.ActorID == "" {
		e.ActorID = user.UserID
	}
	e.RequestID = requestctx.GetRequestID(r.Context())
	e.IP = remoteIP(r)
	if err := rec.Record(r.Context(), e); err != nil {
		attrs := append([]any{"action", e.Action, "entityId", e.EntityID, "err", err}, requestctx.LogAttrs(r.Context())...)
		slog.Warn("audit record failed", attrs...)
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
