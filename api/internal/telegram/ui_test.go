package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybersafe/api/internal/llm/types"
)

func TestFormatVerdict(t *testing.T) {
	out := FormatVerdict(types.ScanResult{
		Status:          types.StatusDanger,
		Score:           10,
		Issues:          []string{"urgency tactic", "shortened link"},
		Explanation:     "Classic account-suspension phish.",
		Recommendations: []string{"Do not click the link"},
		ScamType:        "phishing",
	})
	assert.True(t, strings.HasPrefix(out, "🚨 Dangerous (score 10/100)"))
	assert.Contains(t, out, "Type: phishing")
	assert.Contains(t, out, "• shortened link")
	assert.Contains(t, out, "What to do:\n• Do not click the link")
}

func TestVerdictHeader_AllStatuses(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range []types.Status{types.StatusSafe, types.StatusWarning, types.StatusDanger, types.StatusInfo, "bogus"} {
		h := verdictHeader(s)
		assert.False(t, seen[h], "duplicate header %q", h)
		seen[h] = true
	}
	assert.Equal(t, "✅ Looks safe", verdictHeader("SAFE"))
}

func TestCategoryCallback(t *testing.T) {
	kb := categoryKeyboard()
	require.Len(t, kb.InlineKeyboard, len(types.Categories))

	for i, c := range types.Categories {
		data := kb.InlineKeyboard[i][0].CallbackData
		require.NotNil(t, data)
		got, ok := categoryFromCallback(*data)
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}

	_, ok := categoryFromCallback("mode:malware")
	assert.False(t, ok)
	_, ok = categoryFromCallback("hint_next")
	assert.False(t, ok)
}

func TestFormatLesson(t *testing.T) {
	out := FormatLesson(&types.Lesson{
		Title:        "OTP scams",
		Introduction: "Banks never ask for OTPs.",
		Sections:     []types.LessonSection{{Heading: "How it works", Content: "A caller poses as the bank.", Tip: "Hang up."}},
		KeyTakeaways: []string{"Never share OTPs"},
		PracticalExercise: types.PracticalExercise{
			Title: "Check your SMS", Description: "Look for fake bank texts.", Steps: []string{"Open inbox", "Search OTP"},
		},
		Quiz: []types.QuizQuestion{{Question: "Share OTP?", Options: []string{"Yes", "No"}, CorrectIndex: 1}},
	})
	assert.Contains(t, out, "📘 OTP scams")
	assert.Contains(t, out, "💡 Hang up.")
	assert.Contains(t, out, "2. Search OTP")
	assert.Contains(t, out, "   b) No")
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10)
	parts := splitMessage(text, 25)
	require.Len(t, parts, 5)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 25)
	}
	assert.Equal(t, strings.TrimRight(text, "\n"), strings.Join(parts, "\n"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abc", 2))
	assert.Equal(t, "தமி…", truncate("தமிழ்", 3))
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, "tg:-100123", scopeFor(-100123))
}
