package handle

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybersafe/api/internal/llm"
	"cybersafe/api/internal/llm/gateway"
	"cybersafe/api/internal/llm/types"
)

// fakeUpstream answers chat/completions with a fixed status and content.
type fakeUpstream struct {
	srv    *httptest.Server
	calls  atomic.Int32
	status int
	reply  string
}

func newFakeUpstream(t *testing.T, status int, reply string) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{status: status, reply: reply}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": f.reply}}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstream) router(key string) http.Handler {
	eng := gateway.New(key, "", f.srv.URL, nil).WithHTTPClient(f.srv.Client())
	h := New(&llm.Engines{Default: eng, Gateway: eng}, Options{})
	return h.Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e.Error
}

const phishingReply = `{"status":"danger","score":10,"issues":["urgency tactic","shortened link"],"explanation":"...","scamType":"phishing"}`

func TestScan_PassThrough(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	rec := do(t, f.router("k"), http.MethodPost, "/v1/scan", types.ScanRequest{
		ScanType: "scam-detector",
		Content:  "URGENT: verify your account now at http://bit.ly/xyz or it will be suspended",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, phishingReply, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestScan_NonJSONDegrades(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, "looks fine to me")
	rec := do(t, f.router("k"), http.MethodPost, "/v1/scan", types.ScanRequest{ScanType: "network", Content: "x"})

	require.Equal(t, http.StatusOK, rec.Code)
	var res types.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, types.StatusWarning, res.Status)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, "looks fine to me", res.Explanation)
	assert.Equal(t, []string{types.FallbackRecommendation}, res.Recommendations)
}

func TestLesson_NonJSONFails(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, "Here is your lesson!")
	rec := do(t, f.router("k"), http.MethodPost, "/v1/generate-lesson", types.LessonRequest{Topic: "phishing"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, types.MsgLessonFailed, errorOf(t, rec))
}

func TestLesson_Success(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, "```json\n{\"title\":\"Spotting phishing\"}\n```")
	rec := do(t, f.router("k"), http.MethodPost, "/v1/generate-lesson",
		map[string]any{"lessonId": 3, "topic": "phishing", "language": "ta"})

	require.Equal(t, http.StatusOK, rec.Code)
	var out types.LessonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.JSONEq(t, `{"title":"Spotting phishing"}`, string(out.Lesson))
}

func TestTranscribe_Success(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, "Hello, this is your bank calling.")
	rec := do(t, f.router("k"), http.MethodPost, "/v1/transcribe",
		types.TranscribeRequest{AudioBase64: "UklGRg==", MimeType: "audio/wav"})

	require.Equal(t, http.StatusOK, rec.Code)
	var out types.TranscribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Hello, this is your bank calling.", out.Transcript)
}

func TestUpstreamStatusMapping(t *testing.T) {
	type route struct {
		path string
		body any
	}
	scan := route{"/v1/scan", types.ScanRequest{Content: "c"}}
	transcribe := route{"/v1/transcribe", types.TranscribeRequest{AudioBase64: "QUJD"}}
	lesson := route{"/v1/generate-lesson", types.LessonRequest{Topic: "t"}}

	cases := []struct {
		name     string
		route    route
		upstream int
		code     int
		msg      string
	}{
		{"scan 429", scan, 429, 429, types.MsgRateLimited},
		{"transcribe 429", transcribe, 429, 429, types.MsgRateLimited},
		{"lesson 429", lesson, 429, 429, types.MsgRateLimited},
		{"scan 402", scan, 402, 402, types.MsgCreditsExhausted},
		{"lesson 402", lesson, 402, 402, types.MsgCreditsExhausted},
		{"transcribe 402", transcribe, 402, 500, types.MsgTranscribeFailed},
		{"scan 500", scan, 500, 500, types.MsgGatewayError},
		{"lesson 503", lesson, 503, 500, types.MsgGatewayError},
		{"transcribe 500", transcribe, 500, 500, types.MsgTranscribeFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeUpstream(t, tc.upstream, "")
			rec := do(t, f.router("k"), http.MethodPost, tc.route.path, tc.route.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, errorOf(t, rec))
			assert.Equal(t, int32(1), f.calls.Load())
		})
	}
}

func TestMissingKey_NoOutboundCall(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	h := f.router("")

	for path, body := range map[string]any{
		"/v1/scan":            types.ScanRequest{Content: "c"},
		"/v1/transcribe":      types.TranscribeRequest{AudioBase64: "QUJD"},
		"/v1/generate-lesson": types.LessonRequest{Topic: "t"},
	} {
		rec := do(t, h, http.MethodPost, path, body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, "AI_GATEWAY_API_KEY is not configured", errorOf(t, rec), path)
	}
	assert.Zero(t, f.calls.Load())
}

func TestMissingKey_WinsOverInputErrors(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	h := f.router("")

	for path, body := range map[string]any{
		"/v1/scan":            types.ScanRequest{Content: "  "},
		"/v1/transcribe":      types.TranscribeRequest{MimeType: "audio/wav"},
		"/v1/generate-lesson": types.LessonRequest{},
	} {
		rec := do(t, h, http.MethodPost, path, body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, "AI_GATEWAY_API_KEY is not configured", errorOf(t, rec), path)
	}
	assert.Zero(t, f.calls.Load())
}

func TestInputValidation(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	h := f.router("k")

	rec := do(t, h, http.MethodPost, "/v1/scan", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/scan", types.ScanRequest{ScanType: "deepfake", Content: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", errorOf(t, rec))

	rec = do(t, h, http.MethodPost, "/v1/transcribe", types.TranscribeRequest{MimeType: "audio/wav"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, types.MsgNoAudio, errorOf(t, rec))

	rec = do(t, h, http.MethodPost, "/v1/generate-lesson", types.LessonRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "topic is required", errorOf(t, rec))

	rec = do(t, h, http.MethodPost, "/v1/scan", types.ScanRequest{Content: "c", Provider: "claude"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), "unknown provider")

	assert.Zero(t, f.calls.Load())
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	rec := do(t, f.router("k"), http.MethodGet, "/v1/scan", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	h := f.router("k")

	for _, path := range []string{"/v1/scan", "/v1/transcribe", "/v1/generate-lesson", "/anything"} {
		rec := do(t, h, http.MethodOptions, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
	}

	rec := do(t, h, http.MethodPost, "/v1/scan", types.ScanRequest{Content: "c"})
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, phishingReply)
	eng := gateway.New("k", "", f.srv.URL, nil).WithHTTPClient(f.srv.Client())
	h := New(&llm.Engines{Default: eng}, Options{MaxBodyBytes: 64}).Routes()

	rec := do(t, h, http.MethodPost, "/v1/scan", types.ScanRequest{Content: strings.Repeat("a", 512)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, f.calls.Load())
}

func TestHealthz(t *testing.T) {
	f := newFakeUpstream(t, http.StatusOK, "")
	rec := do(t, f.router(""), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
