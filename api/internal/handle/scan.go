package handle

import (
	"net/http"
	"strings"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
)

// Scan classifies content under the requested category. A 200 body is the
// model's JSON object or a synthesised warning result.
func (h *Handle) Scan(w http.ResponseWriter, r *http.Request) {
	var req types.ScanRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withDeadline(r)
	defer cancel()

	engine, ok := h.engine(w, req.Provider)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, err := engine.Scan(ctx, req)
	if err != nil {
		code, msg := failure(err, true, types.MsgGatewayError)
		h.log.Error("scan failed",
			logging.F("scanType", req.ScanType),
			logging.F("provider", engine.Name()),
			logging.F("status", code),
			logging.Err(err))
		writeError(w, code, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}
