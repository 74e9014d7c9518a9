package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"cybersafe/api/internal/util"
)

// FallbackRecommendation is attached to results synthesised from unparseable replies.
const FallbackRecommendation = "Unable to fully parse AI response"

type ScanRequest struct {
	ScanType string `json:"scanType"`
	Content  string `json:"content"`
	FileName string `json:"fileName,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func (r ScanRequest) Category() Category { return ParseCategory(r.ScanType) }

type ScanResult struct {
	Status          Status   `json:"status"`
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Explanation     string   `json:"explanation"`
	Recommendations []string `json:"recommendations,omitempty"`
	ScamType        string   `json:"scamType,omitempty"`
}

// UnmarshalJSON accepts whatever the model produced: fractional or quoted
// scores are rounded, a lone issue string becomes a one-element list, and
// non-string text fields keep their JSON text. Only a non-object fails.
func (r *ScanResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Status          json.RawMessage `json:"status"`
		Score           json.RawMessage `json:"score"`
		Issues          json.RawMessage `json:"issues"`
		Explanation     json.RawMessage `json:"explanation"`
		Recommendations json.RawMessage `json:"recommendations"`
		ScamType        json.RawMessage `json:"scamType"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = ScanResult{
		Status:          Status(looseString(raw.Status)),
		Score:           looseScore(raw.Score),
		Issues:          looseStrings(raw.Issues),
		Explanation:     looseString(raw.Explanation),
		Recommendations: looseStrings(raw.Recommendations),
		ScamType:        looseString(raw.ScamType),
	}
	return nil
}

func isNull(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || string(b) == "null"
}

func looseString(b json.RawMessage) string {
	if isNull(b) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(b))
}

func looseScore(b json.RawMessage) int {
	if isNull(b) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return 0
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64); err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func looseStrings(b json.RawMessage) []string {
	if isNull(b) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return []string{looseString(b)}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !isNull(it) {
			out = append(out, looseString(it))
		}
	}
	return out
}

// ScanReply is the gateway response body: the model's JSON object as-is, or
// a synthesised fallback result.
type ScanReply = json.RawMessage

// DecodeScanReply never fails. A reply that is not a JSON object is wrapped
// into a warning result carrying the raw text as explanation.
func DecodeScanReply(text string) ScanReply {
	if obj, ok := jsonObject(text); ok {
		return obj
	}
	b, _ := json.Marshal(FallbackScanResult(text))
	return b
}

func FallbackScanResult(raw string) ScanResult {
	return ScanResult{
		Status:          StatusWarning,
		Score:           50,
		Issues:          []string{},
		Explanation:     raw,
		Recommendations: []string{FallbackRecommendation},
	}
}

// jsonObject returns the compact object when text (optionally fenced) is a JSON object.
func jsonObject(text string) (json.RawMessage, bool) {
	s := util.StripCodeFences(text)
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

// VoiceScan is the outcome of transcribing a call and scanning the transcript.
type VoiceScan struct {
	Transcript string     `json:"transcript"`
	Result     ScanResult `json:"result"`
}
