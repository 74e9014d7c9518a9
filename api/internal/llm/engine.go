package llm

import (
	"context"
	"fmt"
	"strings"

	"cybersafe/api/internal/llm/types"
)

// Engine is one upstream model provider. Each call is a single upstream
// request; engines do not retry.
type Engine interface {
	Name() string
	GetModel() string
	// EnsureKey returns a *types.MissingKeyError when the credential is unset.
	EnsureKey() error
	Scan(ctx context.Context, in types.ScanRequest) (types.ScanReply, error)
	Transcribe(ctx context.Context, in types.TranscribeRequest) (types.TranscribeResponse, error)
	GenerateLesson(ctx context.Context, in types.LessonRequest) (types.LessonResponse, error)
}

type Engines struct {
	Default Engine
	Gateway Engine
	Gemini  Engine
}

// GetEngine resolves a request's provider field. Empty means the default.
func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		eng = e.Default
	case "gateway", "openai", "lovable":
		eng = e.Gateway
	case "gemini":
		eng = e.Gemini
	default:
		return nil, fmt.Errorf("unknown provider %q; use 'gateway' or 'gemini'", name)
	}
	if eng == nil {
		return nil, fmt.Errorf("provider %q is not available", name)
	}
	return eng, nil
}
