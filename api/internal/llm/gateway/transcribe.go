package gateway

import (
	"context"
	"strings"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/util"
)

func (e *Engine) Transcribe(ctx context.Context, in types.TranscribeRequest) (types.TranscribeResponse, error) {
	if err := e.EnsureKey(); err != nil {
		return types.TranscribeResponse{}, err
	}
	mime := in.MIME()
	e.log.Info("transcription started", logging.F("mimeType", mime))

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": e.prompts.TranscribeSystem()},
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": e.prompts.TranscribeUser()},
					map[string]any{
						"type": "input_audio",
						"input_audio": map[string]any{
							"data":   util.StripDataURL(in.AudioBase64),
							"format": types.AudioFormat(mime),
						},
					},
				},
			},
		},
	}

	out, err := e.chat(ctx, "transcribe", body)
	if err != nil {
		return types.TranscribeResponse{}, err
	}
	if strings.TrimSpace(out) == "" {
		out = types.EmptyTranscript
	}
	e.log.Info("transcription complete", logging.F("preview", util.Truncate(out, 100)))
	return types.TranscribeResponse{Transcript: out}, nil
}
