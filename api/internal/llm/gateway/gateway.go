package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"cybersafe/api/internal/llm/prompt"
	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/util"
)

const (
	KeyEnv       = "AI_GATEWAY_API_KEY"
	DefaultURL   = "https://ai.gateway.lovable.dev/v1"
	DefaultModel = "google/gemini-2.5-flash"
)

// Engine talks to an OpenAI-compatible chat/completions endpoint.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string

	prompts *prompt.Catalog
	httpc   *http.Client
	log     logging.Logger
}

func New(key, model, baseURL string, prompts *prompt.Catalog) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// model replies can take a while before the first header arrives
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	if prompts == nil {
		prompts = prompt.Default()
	}
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		prompts: prompts,
		httpc:   &http.Client{Transport: tr},
		log:     logging.Nop{},
	}
}

// WithHTTPClient overrides the internal HTTP client (tests, tracing).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) WithLogger(l logging.Logger) *Engine {
	if l != nil {
		e.log = l.With(logging.F("provider", e.Name()))
	}
	return e
}

func (e *Engine) Name() string     { return "gateway" }
func (e *Engine) GetModel() string { return e.Model }

// EnsureKey reports a missing credential without touching the network.
func (e *Engine) EnsureKey() error {
	if e.APIKey == "" {
		return &types.MissingKeyError{Env: KeyEnv}
	}
	return nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chat posts one completion request and returns the first choice's text.
// A reply without choices yields "" and no error; callers apply their own
// policy to empty text.
func (e *Engine) chat(ctx context.Context, op string, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gateway %s: encode: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gateway %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		e.log.Error("upstream error",
			logging.F("op", op),
			logging.F("status", resp.StatusCode),
			logging.F("body", util.Truncate(strings.TrimSpace(string(x)), 1024)))
		return "", &types.UpstreamError{
			Provider: e.Name(),
			Status:   resp.StatusCode,
			Body:     util.Truncate(strings.TrimSpace(string(x)), 1024),
		}
	}

	var raw chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("gateway %s: decode reply: %w", op, err)
	}
	if len(raw.Choices) == 0 {
		e.log.Warn("upstream reply without choices", logging.F("op", op))
		return "", nil
	}
	return raw.Choices[0].Message.Content, nil
}
