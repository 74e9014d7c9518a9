package handle

import (
	"net/http"
	"strings"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
)

// Transcribe turns base64 audio into text. Missing audio and quota
// exhaustion are both server-side failures here (500).
func (h *Handle) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req types.TranscribeRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := h.withDeadline(r)
	defer cancel()

	engine, ok := h.engine(w, req.Provider)
	if !ok {
		return
	}
	if strings.TrimSpace(req.AudioBase64) == "" {
		writeError(w, http.StatusInternalServerError, types.MsgNoAudio)
		return
	}

	out, err := engine.Transcribe(ctx, req)
	if err != nil {
		code, msg := failure(err, false, types.MsgTranscribeFailed)
		h.log.Error("transcription failed",
			logging.F("mimeType", req.MIME()),
			logging.F("provider", engine.Name()),
			logging.F("status", code),
			logging.Err(err))
		writeError(w, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
