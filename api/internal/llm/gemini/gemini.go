package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cybersafe/api/internal/llm/prompt"
	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/util"
)

const (
	KeyEnv       = "GEMINI_API_KEY"
	DefaultModel = "gemini-2.5-flash"
)

// Engine calls Google Gemini directly through the genai SDK.
type Engine struct {
	APIKey string
	Model  string

	prompts *prompt.Catalog
	opts    []option.ClientOption
	log     logging.Logger
}

func New(apiKey, model string, prompts *prompt.Catalog) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if prompts == nil {
		prompts = prompt.Default()
	}
	return &Engine{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   model,
		prompts: prompts,
		log:     logging.Nop{},
	}
}

// WithClientOptions appends SDK options (endpoint, HTTP client) to every call.
func (e *Engine) WithClientOptions(opts ...option.ClientOption) *Engine {
	e.opts = append(e.opts, opts...)
	return e
}

func (e *Engine) WithLogger(l logging.Logger) *Engine {
	if l != nil {
		e.log = l.With(logging.F("provider", e.Name()))
	}
	return e
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) EnsureKey() error {
	if e.APIKey == "" {
		return &types.MissingKeyError{Env: KeyEnv}
	}
	return nil
}

// generate issues one GenerateContent call. jsonOut asks for application/json.
func (e *Engine) generate(ctx context.Context, op, system string, jsonOut bool, parts ...genai.Part) (string, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini %s: client: %w", op, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini %s: model is nil", op)
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if jsonOut {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		ue := classify(err)
		e.log.Error("upstream error", logging.F("op", op), logging.F("status", ue.Status), logging.Err(err))
		return "", ue
	}
	return firstText(resp), nil
}

// classify turns SDK errors into an UpstreamError carrying an HTTP status
// where one can be recovered.
func classify(err error) *types.UpstreamError {
	ue := &types.UpstreamError{Provider: "gemini", Body: util.Truncate(err.Error(), 1024)}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		ue.Status = gerr.Code
		return ue
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			ue.Status = http.StatusTooManyRequests
		case codes.Unauthenticated:
			ue.Status = http.StatusUnauthorized
		case codes.PermissionDenied:
			ue.Status = http.StatusForbidden
		case codes.InvalidArgument:
			ue.Status = http.StatusBadRequest
		case codes.Unavailable:
			ue.Status = http.StatusServiceUnavailable
		}
	}
	return ue
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
