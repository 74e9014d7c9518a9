package types

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages returned in {"error": ...} bodies.
const (
	MsgRateLimited      = "Rate limit exceeded. Please try again later."
	MsgCreditsExhausted = "AI credits exhausted. Please add funds."
	MsgGatewayError     = "AI gateway error"
	MsgTranscribeFailed = "Failed to transcribe audio"
	MsgLessonFailed     = "Failed to generate lesson content"
	MsgNoAudio          = "No audio data provided"
)

// MissingKeyError reports an unset upstream credential.
type MissingKeyError struct {
	Env string
}

func (e *MissingKeyError) Error() string { return e.Env + " is not configured" }

// UpstreamError is a non-2xx answer (or SDK failure) from the model provider.
// Status is 0 when the provider gave no HTTP status.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) RateLimited() bool    { return e.Status == http.StatusTooManyRequests }
func (e *UpstreamError) QuotaExhausted() bool { return e.Status == http.StatusPaymentRequired }

// AsUpstream unwraps err into an *UpstreamError.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func AsMissingKey(err error) (*MissingKeyError, bool) {
	var mk *MissingKeyError
	if errors.As(err, &mk) {
		return mk, true
	}
	return nil, false
}
