package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is the small structured logging surface used across the gateway,
// the bot and the CLI.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger carrying the given fields on every entry.
	With(fields ...Field) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// ParseLevel maps LOG_LEVEL values; anything unrecognised is info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// JSONLogger prints one JSON object per line.
type JSONLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	min       Level
	component string
	fields    []Field
}

func New(out io.Writer, component string, min Level) *JSONLogger {
	if out == nil {
		out = os.Stdout
	}
	return &JSONLogger{mu: &sync.Mutex{}, out: out, min: min, component: component}
}

// NewStdout is the default process logger.
func NewStdout(component string) *JSONLogger {
	return New(os.Stdout, component, ParseLevel(os.Getenv("LOG_LEVEL")))
}

func (l *JSONLogger) log(lv Level, msg string, fields ...Field) {
	if lv < l.min {
		return
	}
	type entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	var m map[string]any
	if n := len(l.fields) + len(fields); n > 0 {
		m = make(map[string]any, n)
		for _, f := range l.fields {
			m[f.Key] = f.Value
		}
		for _, f := range fields {
			m[f.Key] = f.Value
		}
	}
	e := entry{
		Level:     lv.String(),
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(l.out, "%s %s %v\n", e.Level, msg, m)
		return
	}
	b = append(b, '\n')
	_, _ = l.out.Write(b)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

func (l *JSONLogger) With(fields ...Field) Logger {
	child := *l
	child.fields = append(append([]Field(nil), l.fields...), fields...)
	for _, f := range fields {
		if f.Key == "component" {
			if s, ok := f.Value.(string); ok {
				child.component = s
			}
		}
	}
	return &child
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }
