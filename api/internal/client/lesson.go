package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/prefs"
)

const MsgLessonFailed = "Failed to generate lesson"

type LessonAPI interface {
	GenerateLesson(ctx context.Context, req types.LessonRequest) (types.LessonResponse, error)
}

type LessonState struct {
	IsLoading bool
	Lesson    *types.Lesson
	Raw       json.RawMessage
	Error     string
}

// LessonSession generates lessons in the language held by prefs at call time.
type LessonSession struct {
	api   LessonAPI
	prefs *prefs.Preferences

	mu sync.Mutex
	st LessonState
}

func NewLessonSession(api LessonAPI, p *prefs.Preferences) *LessonSession {
	return &LessonSession{api: api, prefs: p}
}

func (s *LessonSession) State() LessonState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *LessonSession) Reset() {
	s.mu.Lock()
	s.st = LessonState{}
	s.mu.Unlock()
}

// Generate asks for a lesson on topic. lessonID is echoed to the gateway and
// omitted when zero.
func (s *LessonSession) Generate(ctx context.Context, lessonID int, topic string) (*types.Lesson, error) {
	s.mu.Lock()
	s.st = LessonState{IsLoading: true}
	s.mu.Unlock()

	lang := prefs.DefaultLanguage
	if s.prefs != nil {
		// a storage error still yields the default language
		lang, _ = s.prefs.Language(ctx)
	}
	req := types.LessonRequest{Topic: topic, Language: string(lang)}
	if lessonID != 0 {
		req.LessonID = json.RawMessage(strconv.Itoa(lessonID))
	}

	out, err := s.api.GenerateLesson(ctx, req)
	if err != nil {
		err = withDefault(err, MsgLessonFailed)
		s.setError(err.Error())
		return nil, err
	}

	var lesson types.Lesson
	if err := json.Unmarshal(out.Lesson, &lesson); err != nil {
		err = fmt.Errorf("%s: %w", MsgLessonFailed, err)
		s.setError(err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.st = LessonState{Lesson: &lesson, Raw: out.Lesson}
	s.mu.Unlock()
	return &lesson, nil
}

func (s *LessonSession) setError(msg string) {
	s.mu.Lock()
	s.st = LessonState{Error: msg}
	s.mu.Unlock()
}
