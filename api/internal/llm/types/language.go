package types

import "strings"

// Language is the display language of generated lessons.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTamil   Language = "ta"
	LanguageHindi   Language = "hi"
)

// ParseLanguage returns English for anything unrecognised.
func ParseLanguage(s string) Language {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case LanguageTamil, LanguageHindi:
		return l
	default:
		return LanguageEnglish
	}
}

func ValidLanguage(s string) bool {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish, LanguageTamil, LanguageHindi:
		return true
	}
	return false
}
