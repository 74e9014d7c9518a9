package gateway

import (
	"context"

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

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": e.prompts.ScanSystem(cat)},
			map[string]any{"role": "user", "content": e.prompts.ScanUser(cat, in.Content, in.FileName)},
		},
		"response_format": map[string]any{"type": "json_object"},
	}

	out, err := e.chat(ctx, "scan", body)
	if err != nil {
		return nil, err
	}
	e.log.Debug("scan reply", logging.F("text", util.Truncate(out, 512)))
	return types.DecodeScanReply(out), nil
}
