package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/llm/types"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/prefs"
)

// ScanAPI is the gateway surface the bot drives.
type ScanAPI interface {
	client.API
	client.LessonAPI
}

type Router struct {
	Bot   *tgbotapi.BotAPI
	API   ScanAPI
	Prefs prefs.Store
	Log   logging.Logger
	// Fetch downloads a file by URL. Nil means a plain HTTP GET.
	Fetch func(ctx context.Context, url string) ([]byte, error)

	chats sync.Map // chatID -> *chatState
}

type chatState struct {
	scan   *client.ScanSession
	lesson *client.LessonSession
	prefs  *prefs.Preferences
	busy   atomic.Bool
}

func scopeFor(chatID int64) string { return fmt.Sprintf("tg:%d", chatID) }

func (r *Router) chat(chatID int64) *chatState {
	if v, ok := r.chats.Load(chatID); ok {
		return v.(*chatState)
	}
	p := prefs.New(r.Prefs, scopeFor(chatID))
	st := &chatState{
		scan:   client.NewScanSession(r.API),
		lesson: client.NewLessonSession(r.API, p),
		prefs:  p,
	}
	v, _ := r.chats.LoadOrStore(chatID, st)
	return v.(*chatState)
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case msg.Voice != nil:
		r.acceptVoice(ctx, cid, msg.Voice.FileID, msg.Voice.MimeType)
	case msg.Audio != nil:
		r.acceptVoice(ctx, cid, msg.Audio.FileID, msg.Audio.MimeType)
	case strings.TrimSpace(msg.Text) != "":
		r.acceptText(ctx, cid, msg.Text)
	case msg.Caption != "":
		r.acceptText(ctx, cid, msg.Caption)
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	st := r.chat(cid)
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "mode":
		if args == "" {
			cur, _ := st.prefs.Category(ctx)
			r.sendWithKeyboard(cid, "Current scan mode: "+categoryTitle(cur)+"\nPick another:", categoryKeyboard())
			return
		}
		r.setCategory(ctx, cid, args)
	case "lang":
		if args == "" {
			cur, _ := st.prefs.Language(ctx)
			r.send(cid, "Lesson language: "+string(cur)+"\nUsage: /lang en|ta|hi")
			return
		}
		if err := st.prefs.SetLanguage(ctx, args); err != nil {
			r.send(cid, "❌ "+err.Error())
			return
		}
		r.send(cid, "✅ Lesson language set to "+strings.ToLower(args))
	case "lesson":
		if args == "" {
			r.send(cid, "Usage: /lesson <topic>, e.g. /lesson spotting phishing links")
			return
		}
		r.runLesson(ctx, cid, args)
	case "reset":
		st.scan.Reset()
		st.lesson.Reset()
		r.send(cid, "Cleared.")
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

func (r *Router) setCategory(ctx context.Context, cid int64, value string) {
	if err := r.chat(cid).prefs.SetCategory(ctx, value); err != nil {
		r.send(cid, "❌ "+err.Error())
		return
	}
	r.send(cid, "✅ Scan mode: "+categoryTitle(types.ParseCategory(value)))
}

// acquire marks the chat busy. It fails while a previous request is running.
func (r *Router) acquire(cid int64) (*chatState, bool) {
	st := r.chat(cid)
	if st.scan.State().IsScanning || !st.busy.CompareAndSwap(false, true) {
		r.send(cid, "⏳ Still working on your previous request.")
		return nil, false
	}
	return st, true
}

func (r *Router) acceptText(ctx context.Context, cid int64, text string) {
	st, ok := r.acquire(cid)
	if !ok {
		return
	}
	defer st.busy.Store(false)

	cat, err := st.prefs.Category(ctx)
	if err != nil {
		r.Log.Warn("prefs unavailable", logging.F("chat", cid), logging.Err(err))
	}
	r.typing(cid)
	res, err := st.scan.Scan(ctx, cat, text, "")
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, FormatVerdict(res))
}

func (r *Router) acceptVoice(ctx context.Context, cid int64, fileID, mime string) {
	st, ok := r.acquire(cid)
	if !ok {
		return
	}
	defer st.busy.Store(false)

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	fetch := r.Fetch
	if fetch == nil {
		fetch = download
	}
	audio, err := fetch(ctx, url)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	if mime == "" {
		// telegram voice notes are ogg/opus
		mime = "audio/ogg"
	}

	r.send(cid, "🎧 Listening to the recording…")
	out, err := st.scan.TranscribeAndScan(ctx, audio, mime)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, FormatVoice(out))
}

func (r *Router) runLesson(ctx context.Context, cid int64, topic string) {
	st, ok := r.acquire(cid)
	if !ok {
		return
	}
	defer st.busy.Store(false)

	r.typing(cid)
	lesson, err := st.lesson.Generate(ctx, 0, topic)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	for _, part := range splitMessage(FormatLesson(lesson), maxMessage) {
		r.send(cid, part)
	}
}

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	if cat, ok := categoryFromCallback(cb.Data); ok {
		edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{})
		_, _ = r.Bot.Send(edit)
		r.setCategory(ctx, cid, string(cat))
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessage))
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("telegram send failed", logging.F("chat", chatID), logging.Err(err))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = r.Bot.Send(msg)
}

func (r *Router) typing(chatID int64) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (r *Router) SendError(chatID int64, err error) {
	r.Log.Warn("request failed", logging.F("chat", chatID), logging.Err(err))
	r.send(chatID, "❌ "+err.Error())
}
