package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/util"
)

func (e *Engine) Scan(ctx context.Context, in types.ScanRequest) (types.ScanReply, error) {
	if err := e.EnsureKey(); err != nil {
		return nil, err
	}
	cat := in.Category()
	e.log.Info("scan started", logging.F("scanType", in.ScanType), logging.F("category", cat.String()))

	out, err := e.generate(ctx, "scan", e.prompts.ScanSystem(cat), true,
		genai.Text(e.prompts.ScanUser(cat, in.Content, in.FileName)))
	if err != nil {
		return nil, err
	}
	return types.DecodeScanReply(out), nil
}

func (e *Engine) Transcribe(ctx context.Context, in types.TranscribeRequest) (types.TranscribeResponse, error) {
	if err := e.EnsureKey(); err != nil {
		return types.TranscribeResponse{}, err
	}
	audio, hint, err := util.DecodeBase64MaybeDataURL(in.AudioBase64)
	if err != nil {
		return types.TranscribeResponse{}, fmt.Errorf("gemini transcribe: bad base64: %w", err)
	}
	mime := util.PickAudioMIME(in.MimeType, hint, audio, types.DefaultAudioMIME)
	e.log.Info("transcription started", logging.F("mimeType", mime), logging.F("bytes", len(audio)))

	out, err := e.generate(ctx, "transcribe", e.prompts.TranscribeSystem(), false,
		genai.Text(e.prompts.TranscribeUser()),
		genai.Blob{MIMEType: mime, Data: audio},
	)
	if err != nil {
		return types.TranscribeResponse{}, err
	}
	if strings.TrimSpace(out) == "" {
		out = types.EmptyTranscript
	}
	return types.TranscribeResponse{Transcript: out}, nil
}

func (e *Engine) GenerateLesson(ctx context.Context, in types.LessonRequest) (types.LessonResponse, error) {
	if err := e.EnsureKey(); err != nil {
		return types.LessonResponse{}, err
	}
	lang := in.Lang()
	e.log.Info("lesson started", logging.F("topic", in.Topic), logging.F("language", string(lang)))

	out, err := e.generate(ctx, "lesson", e.prompts.LessonSystem(lang), true,
		genai.Text(e.prompts.LessonUser(in.Topic)))
	if err != nil {
		return types.LessonResponse{}, err
	}
	lr, err := types.DecodeLesson(out)
	if err != nil {
		return types.LessonResponse{}, fmt.Errorf("gemini lesson: %w", err)
	}
	return lr, nil
}
