package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"paydesk/internal/platform/requestctx"
	"paydesk/internal/transport/http/api"
)

// DecodeJSON decodes the body and answers 400 invalid_payload on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return false
	}
	return true
}

// ServerError logs err with the request id and answers an opaque 500.
func ServerError(w http.ResponseWriter, r *http.Request, code string, err error) {
	attrs := append([]any{"code", code, "path", r.URL.Path, "err", err}, requestctx.LogAttrs(r.Context())...)
	slog.Error("request failed", attrs...)
	api.Fail(w, http.StatusInternalServerError, code, "internal server error", requestctx.GetRequestID(r.Context()))
}
