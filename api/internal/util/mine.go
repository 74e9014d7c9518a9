package util

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// DecodeBase64MaybeDataURL decodes base64. For a data: URI the MIME from the prefix is returned as well.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hintMIME string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hintMIME = meta[:semi]
			} else {
				hintMIME = meta
			}
			s = s[idx+1:]
		}
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, hintMIME, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, hintMIME, nil
	} else {
		return nil, "", err
	}
}

// StripDataURL drops a data:<mime>;base64, prefix and returns the bare payload.
func StripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			return s[idx+1:]
		}
	}
	return s
}

// PickAudioMIME prefers the explicit MIME, then the data:URI hint, then sniffing.
func PickAudioMIME(explicit, hint string, data []byte, def string) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		if m := SniffAudioMIME(data); m != "" {
			return m
		}
	}
	return def
}

// SniffAudioMIME recognises the containers voice recorders commonly produce.
func SniffAudioMIME(b []byte) string {
	switch {
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE":
		return "audio/wav"
	case len(b) >= 3 && string(b[0:3]) == "ID3",
		len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return "audio/mp3"
	case len(b) >= 4 && string(b[0:4]) == "OggS":
		return "audio/ogg"
	case len(b) >= 4 && b[0] == 0x1A && b[1] == 0x45 && b[2] == 0xDF && b[3] == 0xA3:
		return "audio/webm"
	}
	ct := http.DetectContentType(b)
	if strings.HasPrefix(ct, "audio/") {
		return ct
	}
	return ""
}
