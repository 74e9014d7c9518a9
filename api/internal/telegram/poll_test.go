package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybersafe/api/internal/logging"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelay(t *testing.T) {
	assert.Zero(t, RetryDelay(nil, time.Second))

	limited := &tgbotapi.Error{
		Code:               http.StatusTooManyRequests,
		Message:            "Too Many Requests: retry after 7",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
	}
	assert.Equal(t, 7*time.Second, RetryDelay(limited, time.Second))
	assert.Equal(t, 7*time.Second, RetryDelay(errors.Join(errors.New("getUpdates"), limited), time.Second))

	noHint := &tgbotapi.Error{Code: http.StatusBadGateway, Message: "Bad Gateway"}
	assert.Equal(t, 4*time.Second, RetryDelay(noHint, 4*time.Second))

	assert.Equal(t, 2*time.Second, RetryDelay(timeoutErr{}, 8*time.Second))
	assert.Equal(t, time.Second, RetryDelay(timeoutErr{}, time.Second))
}

// pollServer serves getUpdates from a script of bodies and records offsets.
type pollServer struct {
	mu      sync.Mutex
	script  []string
	offsets []string
}

func (s *pollServer) bot(t *testing.T) *tgbotapi.BotAPI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if path.Base(r.URL.Path) == "getMe" {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"b","username":"b"}}`))
			return
		}
		s.mu.Lock()
		s.offsets = append(s.offsets, r.PostForm.Get("offset"))
		body := `{"ok":true,"result":[]}`
		if len(s.script) > 0 {
			body, s.script = s.script[0], s.script[1:]
		}
		s.mu.Unlock()
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint("TOKEN", srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	return bot
}

func (s *pollServer) sawOffset(o string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.offsets {
		if got == o {
			return true
		}
	}
	return false
}

func TestPoller_RecoversAndAdvancesOffset(t *testing.T) {
	ps := &pollServer{script: []string{
		`{"ok":false,"error_code":502,"description":"Bad Gateway"}`,
		`{"ok":true,"result":[{"update_id":5,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"hi"}}]}`,
	}}
	p := &Poller{
		Bot:        ps.bot(t),
		Log:        logging.Nop{},
		Timeout:    1,
		MinBackoff: 5 * time.Millisecond,
		MaxBackoff: 10 * time.Millisecond,
		Idle:       5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []tgbotapi.Update
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, func(u tgbotapi.Update) {
			mu.Lock()
			got = append(got, u)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool { return ps.sawOffset("6") }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].UpdateID)
	assert.Equal(t, "hi", got[0].Message.Text)
}

func TestPoller_StopsOnCancel(t *testing.T) {
	ps := &pollServer{}
	p := &Poller{Bot: ps.bot(t), Idle: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, func(tgbotapi.Update) {})
	}()

	require.Eventually(t, func() bool { return ps.sawOffset("") }, 5*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}
