package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"cybersafe/api/internal/llm/types"
)

// fakeGemini answers generateContent over REST with a fixed status and text.
type fakeGemini struct {
	mu     sync.Mutex
	status int
	reply  string
	paths  []string
	bodies []string
}

func newFakeGemini(t *testing.T, status int, reply string) (*fakeGemini, *Engine) {
	t.Helper()
	f := &fakeGemini{status: status, reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.bodies = append(f.bodies, string(b))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": f.reply}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	e := New("k", "", nil).WithClientOptions(option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
	return f, e
}

func (f *fakeGemini) last() (path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return "", ""
	}
	return f.paths[len(f.paths)-1], f.bodies[len(f.bodies)-1]
}

func TestScan_Upstream(t *testing.T) {
	const verdict = `{"status":"danger","score":12,"issues":["spoofed sender"],"explanation":"phish"}`
	f, e := newFakeGemini(t, http.StatusOK, "```json\n"+verdict+"\n```")

	reply, err := e.Scan(context.Background(), types.ScanRequest{ScanType: "app-security", Content: "verify your account"})
	require.NoError(t, err)
	assert.JSONEq(t, verdict, string(reply))

	path, body := f.last()
	assert.True(t, strings.HasSuffix(path, "models/"+DefaultModel+":generateContent"), path)
	assert.Contains(t, body, "application/json")
	assert.Contains(t, body, "verify your account")
}

func TestScan_NonJSONFallsBack(t *testing.T) {
	_, e := newFakeGemini(t, http.StatusOK, "I cannot tell.")

	reply, err := e.Scan(context.Background(), types.ScanRequest{Content: "c"})
	require.NoError(t, err)

	var res types.ScanResult
	require.NoError(t, json.Unmarshal(reply, &res))
	assert.Equal(t, types.StatusWarning, res.Status)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, "I cannot tell.", res.Explanation)
}

func TestTranscribe_Upstream(t *testing.T) {
	f, e := newFakeGemini(t, http.StatusOK, "Caller: this is your bank.")

	out, err := e.Transcribe(context.Background(), types.TranscribeRequest{AudioBase64: "UklGRg==", MimeType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "Caller: this is your bank.", out.Transcript)

	_, body := f.last()
	assert.Contains(t, body, "audio/wav")
	assert.Contains(t, body, "UklGRg==")
	assert.NotContains(t, body, "application/json")
}

func TestTranscribe_EmptyReply(t *testing.T) {
	_, e := newFakeGemini(t, http.StatusOK, "  ")

	out, err := e.Transcribe(context.Background(), types.TranscribeRequest{AudioBase64: "UklGRg=="})
	require.NoError(t, err)
	assert.Equal(t, types.EmptyTranscript, out.Transcript)
}

func TestGenerateLesson_Upstream(t *testing.T) {
	f, e := newFakeGemini(t, http.StatusOK, `{"title":"Spotting phishing","sections":[]}`)

	out, err := e.GenerateLesson(context.Background(), types.LessonRequest{Topic: "phishing", Language: "hi"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.JSONEq(t, `{"title":"Spotting phishing","sections":[]}`, string(out.Lesson))

	_, body := f.last()
	assert.Contains(t, body, "application/json")
	assert.Contains(t, body, "phishing")
}

func TestGenerateLesson_NonJSON(t *testing.T) {
	_, e := newFakeGemini(t, http.StatusOK, "Here is a lesson about phishing...")

	_, err := e.GenerateLesson(context.Background(), types.LessonRequest{Topic: "phishing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrLessonUnparseable), err.Error())
}

func TestUpstreamRateLimit(t *testing.T) {
	f, e := newFakeGemini(t, http.StatusTooManyRequests, "")
	ctx := context.Background()

	_, err := e.Scan(ctx, types.ScanRequest{Content: "c"})
	ue, ok := types.AsUpstream(err)
	require.True(t, ok, "%v", err)
	assert.True(t, ue.RateLimited())
	assert.Equal(t, "gemini", ue.Provider)

	_, err = e.Transcribe(ctx, types.TranscribeRequest{AudioBase64: "UklGRg=="})
	ue, ok = types.AsUpstream(err)
	require.True(t, ok, "%v", err)
	assert.True(t, ue.RateLimited())

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Len(t, f.paths, 2)
}
