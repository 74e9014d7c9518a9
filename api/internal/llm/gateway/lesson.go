package gateway

import (
	"context"
	"fmt"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/util"
)

func (e *Engine) GenerateLesson(ctx context.Context, in types.LessonRequest) (types.LessonResponse, error) {
	if err := e.EnsureKey(); err != nil {
		return types.LessonResponse{}, err
	}
	lang := in.Lang()
	e.log.Info("lesson started", logging.F("topic", in.Topic), logging.F("language", string(lang)))

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": e.prompts.LessonSystem(lang)},
			map[string]any{"role": "user", "content": e.prompts.LessonUser(in.Topic)},
		},
		"response_format": map[string]any{"type": "json_object"},
	}

	out, err := e.chat(ctx, "lesson", body)
	if err != nil {
		return types.LessonResponse{}, err
	}
	lr, err := types.DecodeLesson(out)
	if err != nil {
		e.log.Error("lesson reply unparseable", logging.F("text", util.Truncate(out, 512)))
		return types.LessonResponse{}, fmt.Errorf("gateway lesson: %w", err)
	}
	return lr, nil
}
