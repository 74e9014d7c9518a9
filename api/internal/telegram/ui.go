package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cybersafe/api/internal/llm/types"
)

const maxMessage = 3900

const helpText = `Send me a suspicious message, link or app description and I'll check it.
Send a voice note or call recording and I'll transcribe and check it for scams.

/mode – choose what to scan for
/lang en|ta|hi – lesson language
/lesson <topic> – a short safety lesson
/reset – clear the last result`

const callbackMode = "mode:"

func categoryTitle(c types.Category) string {
	switch c {
	case types.CategoryAppSecurity:
		return "App security"
	case types.CategoryScamDetector:
		return "Scam detector"
	case types.CategoryDeepfake:
		return "Deepfake check"
	case types.CategoryNetwork:
		return "Network safety"
	case types.CategoryDarkWeb:
		return "Dark web exposure"
	default:
		return "General security"
	}
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(types.Categories))
	for _, c := range types.Categories {
		btn := tgbotapi.NewInlineKeyboardButtonData(categoryTitle(c), callbackMode+string(c))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func categoryFromCallback(data string) (types.Category, bool) {
	if !strings.HasPrefix(data, callbackMode) {
		return types.CategoryUnknown, false
	}
	c := types.ParseCategory(strings.TrimPrefix(data, callbackMode))
	return c, c.Known()
}

func verdictHeader(s types.Status) string {
	switch types.ParseStatus(string(s)) {
	case types.StatusSafe:
		return "✅ Looks safe"
	case types.StatusWarning:
		return "⚠️ Be careful"
	case types.StatusDanger:
		return "🚨 Dangerous"
	case types.StatusInfo:
		return "ℹ️ For your information"
	default:
		return "❔ Unclear result"
	}
}

// FormatVerdict renders a scan result as a plain-text chat message.
func FormatVerdict(res types.ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (score %d/100)\n", verdictHeader(res.Status), res.Score)
	if res.ScamType != "" {
		fmt.Fprintf(&b, "Type: %s\n", res.ScamType)
	}
	if s := strings.TrimSpace(res.Explanation); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	if len(res.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, is := range res.Issues {
			b.WriteString("• ")
			b.WriteString(is)
			b.WriteString("\n")
		}
	}
	if len(res.Recommendations) > 0 {
		b.WriteString("\nWhat to do:\n")
		for _, r := range res.Recommendations {
			b.WriteString("• ")
			b.WriteString(r)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatVoice(v types.VoiceScan) string {
	return "📝 Transcript:\n" + truncate(v.Transcript, 1500) + "\n\n" + FormatVerdict(v.Result)
}

func FormatLesson(l *types.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📘 %s\n\n", l.Title)
	if l.Introduction != "" {
		b.WriteString(l.Introduction)
		b.WriteString("\n\n")
	}
	for _, s := range l.Sections {
		fmt.Fprintf(&b, "▶ %s\n%s\n", s.Heading, s.Content)
		if s.Tip != "" {
			fmt.Fprintf(&b, "💡 %s\n", s.Tip)
		}
		b.WriteString("\n")
	}
	if len(l.KeyTakeaways) > 0 {
		b.WriteString("Key takeaways:\n")
		for _, k := range l.KeyTakeaways {
			fmt.Fprintf(&b, "• %s\n", k)
		}
		b.WriteString("\n")
	}
	if ex := l.PracticalExercise; ex.Title != "" {
		fmt.Fprintf(&b, "🛠 %s\n%s\n", ex.Title, ex.Description)
		for i, st := range ex.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, st)
		}
		b.WriteString("\n")
	}
	for i, q := range l.Quiz {
		fmt.Fprintf(&b, "❓ Q%d: %s\n", i+1, q.Question)
		for j, o := range q.Options {
			fmt.Fprintf(&b, "   %c) %s\n", 'a'+j, o)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// splitMessage cuts text on line boundaries into chunks of at most n runes.
func splitMessage(s string, n int) []string {
	var (
		out []string
		cur strings.Builder
		sz  int
	)
	for _, line := range strings.SplitAfter(s, "\n") {
		l := len([]rune(line))
		if sz+l > n && sz > 0 {
			out = append(out, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			sz = 0
		}
		cur.WriteString(line)
		sz += l
	}
	if sz > 0 {
		out = append(out, strings.TrimRight(cur.String(), "\n"))
	}
	return out
}
