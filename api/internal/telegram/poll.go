package telegram

import (
	"context"
	"errors"
	"net"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cybersafe/api/internal/logging"
)

// Poller long-polls getUpdates and hands each update to a callback in order.
type Poller struct {
	Bot *tgbotapi.BotAPI
	Log logging.Logger

	// Timeout is the long-poll window in seconds.
	Timeout    int
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// Idle is the pause after an empty batch.
	Idle time.Duration
}

func (p *Poller) defaults() {
	if p.Timeout <= 0 {
		p.Timeout = 30
	}
	if p.MinBackoff <= 0 {
		p.MinBackoff = time.Second
	}
	if p.MaxBackoff < p.MinBackoff {
		p.MaxBackoff = max(15*time.Second, p.MinBackoff)
	}
	if p.Idle <= 0 {
		p.Idle = 200 * time.Millisecond
	}
	if p.Log == nil {
		p.Log = logging.Nop{}
	}
}

// Run polls until ctx is done. Failed calls back off exponentially, and a
// server-supplied retry_after always wins.
func (p *Poller) Run(ctx context.Context, handle func(tgbotapi.Update)) {
	p.defaults()
	offset := 0
	backoff := p.MinBackoff

	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = p.Timeout

		updates, err := p.Bot.GetUpdates(u)
		if err != nil {
			d := RetryDelay(err, backoff)
			p.Log.Warn("polling error", logging.F("retry_in", d.String()), logging.Err(err))
			if !sleep(ctx, d) {
				break
			}
			backoff = min(backoff*2, p.MaxBackoff)
			continue
		}
		backoff = p.MinBackoff

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}
		if len(updates) == 0 && !sleep(ctx, p.Idle) {
			break
		}
	}
	p.Log.Info("polling stopped")
}

// RetryDelay picks the wait after a failed Bot API call. A retry_after hint
// is used as is; a network timeout waits at most two seconds.
func RetryDelay(err error, fallback time.Duration) time.Duration {
	if err == nil {
		return 0
	}
	var te *tgbotapi.Error
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return time.Duration(te.RetryAfter) * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return min(2*time.Second, fallback)
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
