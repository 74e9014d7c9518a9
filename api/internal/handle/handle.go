package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cybersafe/api/internal/llm"
	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
)

const (
	defaultTimeout = 120 * time.Second
	defaultMaxBody = 25 << 20
)

type Handle struct {
	engs    *llm.Engines
	log     logging.Logger
	timeout time.Duration
	maxBody int64
}

type Options struct {
	Logger       logging.Logger
	Timeout      time.Duration
	MaxBodyBytes int64
}

func New(engs *llm.Engines, opt Options) *Handle {
	h := &Handle{
		engs:    engs,
		log:     opt.Logger,
		timeout: opt.Timeout,
		maxBody: opt.MaxBodyBytes,
	}
	if h.log == nil {
		h.log = logging.Nop{}
	}
	if h.timeout <= 0 {
		h.timeout = defaultTimeout
	}
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBody
	}
	return h
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// decode reads a JSON body. It reports 413 for oversized bodies and 400 otherwise.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}

// withDeadline applies X-Request-Timeout (or ?timeoutSec) in seconds, falling
// back to the configured default.
func (h *Handle) withDeadline(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := h.timeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

// failure maps an engine error onto a status and client message. generic is
// used for anything unclassified; with402 controls whether quota exhaustion
// surfaces as 402.
func failure(err error, with402 bool, generic string) (int, string) {
	if mk, ok := types.AsMissingKey(err); ok {
		return http.StatusInternalServerError, mk.Error()
	}
	if ue, ok := types.AsUpstream(err); ok {
		switch {
		case ue.RateLimited():
			return http.StatusTooManyRequests, types.MsgRateLimited
		case ue.QuotaExhausted() && with402:
			return http.StatusPaymentRequired, types.MsgCreditsExhausted
		}
	}
	if errors.Is(err, types.ErrLessonUnparseable) {
		return http.StatusInternalServerError, types.MsgLessonFailed
	}
	return http.StatusInternalServerError, generic
}

// engine resolves the provider and checks its credential. A missing key
// wins over any input error and never reaches the network.
func (h *Handle) engine(w http.ResponseWriter, provider string) (llm.Engine, bool) {
	eng, err := h.engs.GetEngine(provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if err := eng.EnsureKey(); err != nil {
		h.log.Error("engine not configured", logging.F("provider", eng.Name()), logging.Err(err))
		code, msg := failure(err, false, types.MsgGatewayError)
		writeError(w, code, msg)
		return nil, false
	}
	return eng, true
}
