package client

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"cybersafe/api/internal/llm/types"
)

// Default messages when a failure carries no text of its own.
const (
	MsgScanFailed          = "Scan failed"
	MsgTranscriptionFailed = "Transcription failed"
	MsgVoiceFailed         = "Voice analysis failed"
)

// API is the subset of Client a ScanSession needs.
type API interface {
	Scan(ctx context.Context, req types.ScanRequest) (types.ScanResult, error)
	Transcribe(ctx context.Context, req types.TranscribeRequest) (types.TranscribeResponse, error)
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of a session. Result and Error are never both set.
type State struct {
	Phase      Phase
	IsScanning bool
	Result     *types.ScanResult
	Transcript string
	Error      string
}

// Transcript is the text produced by the first stage of a voice scan.
type Transcript string

// ScanContent is the body submitted to the scam-detector scan.
func (t Transcript) ScanContent() string { return "Phone call transcript:\n" + string(t) }

// ScanSession tracks one scan at a time for a single user. It does not
// refuse overlapping calls; callers check State().IsScanning first.
type ScanSession struct {
	api API

	mu sync.Mutex
	st State
}

func NewScanSession(api API) *ScanSession { return &ScanSession{api: api} }

func (s *ScanSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *ScanSession) Reset() {
	s.mu.Lock()
	s.st = State{}
	s.mu.Unlock()
}

func (s *ScanSession) begin() {
	s.mu.Lock()
	s.st = State{Phase: PhaseScanning, IsScanning: true}
	s.mu.Unlock()
}

func (s *ScanSession) succeed(res types.ScanResult, transcript string) {
	s.mu.Lock()
	s.st = State{Phase: PhaseDone, Result: &res, Transcript: transcript}
	s.mu.Unlock()
}

func (s *ScanSession) fail(msg string) {
	s.mu.Lock()
	s.st = State{Phase: PhaseFailed, Error: msg}
	s.mu.Unlock()
}

// Scan submits content under category. The returned error's text is the
// message stored in State.
func (s *ScanSession) Scan(ctx context.Context, category types.Category, content, fileName string) (types.ScanResult, error) {
	s.begin()
	res, err := s.api.Scan(ctx, types.ScanRequest{
		ScanType: string(category),
		Content:  content,
		FileName: fileName,
	})
	if err != nil {
		err = withDefault(err, MsgScanFailed)
		s.fail(err.Error())
		return types.ScanResult{}, err
	}
	s.succeed(res, "")
	return res, nil
}

// TranscribeAndScan transcribes audio then scans the transcript as a phone
// call. The scan is never issued when transcription fails.
func (s *ScanSession) TranscribeAndScan(ctx context.Context, audio []byte, mimeType string) (types.VoiceScan, error) {
	s.begin()

	t, err := s.transcribe(ctx, audio, mimeType)
	if err != nil {
		err = withDefault(err, MsgVoiceFailed)
		s.fail(err.Error())
		return types.VoiceScan{}, err
	}

	res, err := s.api.Scan(ctx, types.ScanRequest{
		ScanType: string(types.CategoryScamDetector),
		Content:  t.ScanContent(),
	})
	if err != nil {
		err = withDefault(withDefault(err, MsgScanFailed), MsgVoiceFailed)
		s.fail(err.Error())
		return types.VoiceScan{}, err
	}

	s.succeed(res, string(t))
	return types.VoiceScan{Transcript: string(t), Result: res}, nil
}

func (s *ScanSession) transcribe(ctx context.Context, audio []byte, mimeType string) (Transcript, error) {
	out, err := s.api.Transcribe(ctx, types.TranscribeRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		MimeType:    mimeType,
	})
	if err != nil {
		return "", withDefault(err, MsgTranscriptionFailed)
	}
	return Transcript(out.Transcript), nil
}

// withDefault replaces an error that has no message of its own.
func withDefault(err error, msg string) error {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message == "" {
		return &APIError{Status: ae.Status, Message: msg}
	}
	if err.Error() == "" {
		return errors.New(msg)
	}
	return err
}
