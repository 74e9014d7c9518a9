package types

import "strings"

const (
	DefaultAudioMIME = "audio/webm"

	// EmptyTranscript stands in when the model returns no text at all.
	EmptyTranscript = "Unable to transcribe"
)

type TranscribeRequest struct {
	AudioBase64 string `json:"audioBase64"`
	MimeType    string `json:"mimeType,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// MIME returns the declared type or the webm default.
func (r TranscribeRequest) MIME() string {
	if m := strings.TrimSpace(r.MimeType); m != "" {
		return m
	}
	return DefaultAudioMIME
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

// AudioFormat maps a MIME type onto the container tag the upstream accepts.
func AudioFormat(mime string) string {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "wav"):
		return "wav"
	case strings.Contains(m, "mp3"):
		return "mp3"
	default:
		return "webm"
	}
}
