package types

import (
	"encoding/json"
	"errors"
)

// ErrLessonUnparseable is returned when the model reply for a lesson is not
// a JSON object. Unlike scans there is no degraded fallback.
var ErrLessonUnparseable = errors.New("lesson reply is not valid JSON")

type LessonRequest struct {
	// LessonID is echoed for client bookkeeping only.
	LessonID json.RawMessage `json:"lessonId,omitempty"`
	Topic    string          `json:"topic"`
	Language string          `json:"language,omitempty"`
	Provider string          `json:"provider,omitempty"`
}

func (r LessonRequest) Lang() Language { return ParseLanguage(r.Language) }

type LessonResponse struct {
	Success bool            `json:"success"`
	Lesson  json.RawMessage `json:"lesson"`
}

type Lesson struct {
	Title             string            `json:"title"`
	Introduction      string            `json:"introduction"`
	Sections          []LessonSection   `json:"sections"`
	KeyTakeaways      []string          `json:"keyTakeaways"`
	PracticalExercise PracticalExercise `json:"practicalExercise"`
	Quiz              []QuizQuestion    `json:"quiz"`
}

type LessonSection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
	Tip     string `json:"tip"`
}

type PracticalExercise struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// DecodeLesson wraps a JSON object reply into a successful LessonResponse.
func DecodeLesson(text string) (LessonResponse, error) {
	obj, ok := jsonObject(text)
	if !ok {
		return LessonResponse{}, ErrLessonUnparseable
	}
	return LessonResponse{Success: true, Lesson: obj}, nil
}
