package handle

import (
	"net/http"
	"strings"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
)

func (h *Handle) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req types.LessonRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withDeadline(r)
	defer cancel()

	engine, ok := h.engine(w, req.Provider)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	out, err := engine.GenerateLesson(ctx, req)
	if err != nil {
		code, msg := failure(err, true, types.MsgGatewayError)
		h.log.Error("lesson failed",
			logging.F("topic", req.Topic),
			logging.F("language", string(req.Lang())),
			logging.F("status", code),
			logging.Err(err))
		writeError(w, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
