package prefs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cybersafe/api/internal/llm/types"
)

// ErrNotFound is returned by a Store for a key that was never set.
var ErrNotFound = errors.New("preference not found")

// Store is the key-value capability preferences are persisted in.
type Store interface {
	Get(ctx context.Context, scope, key string) (string, error)
	Set(ctx context.Context, scope, key, value string) error
}

const (
	KeyLanguage = "language"
	KeyTheme    = "theme"
	KeyCategory = "category"
)

// Keys lists the preference keys in display order.
var Keys = []string{KeyLanguage, KeyTheme, KeyCategory}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, true
	}
	return ThemeSystem, false
}

const (
	DefaultLanguage = types.LanguageEnglish
	DefaultTheme    = ThemeSystem
	DefaultCategory = types.CategoryScamDetector
)

// Preferences is one user's (scope's) settings. Unset keys read as defaults.
type Preferences struct {
	store Store
	scope string
}

func New(store Store, scope string) *Preferences {
	return &Preferences{store: store, scope: scope}
}

func (p *Preferences) Scope() string { return p.scope }

// Get returns the stored value or the key's default. The default is also
// returned alongside a storage error.
func (p *Preferences) Get(ctx context.Context, key string) (string, error) {
	def, err := defaultFor(key)
	if err != nil {
		return "", err
	}
	v, err := p.store.Get(ctx, p.scope, key)
	if errors.Is(err, ErrNotFound) || (err == nil && v == "") {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("prefs get %s: %w", key, err)
	}
	return v, nil
}

// Set validates and normalises value before storing it.
func (p *Preferences) Set(ctx context.Context, key, value string) error {
	norm, err := normalise(key, value)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, p.scope, key, norm); err != nil {
		return fmt.Errorf("prefs set %s: %w", key, err)
	}
	return nil
}

func (p *Preferences) Language(ctx context.Context) (types.Language, error) {
	v, err := p.Get(ctx, KeyLanguage)
	return types.ParseLanguage(v), err
}

func (p *Preferences) SetLanguage(ctx context.Context, lang string) error {
	return p.Set(ctx, KeyLanguage, lang)
}

func (p *Preferences) Theme(ctx context.Context) (Theme, error) {
	v, err := p.Get(ctx, KeyTheme)
	t, _ := ParseTheme(v)
	return t, err
}

func (p *Preferences) SetTheme(ctx context.Context, theme string) error {
	return p.Set(ctx, KeyTheme, theme)
}

// Category is the default scan type for free-form input.
func (p *Preferences) Category(ctx context.Context) (types.Category, error) {
	v, err := p.Get(ctx, KeyCategory)
	if c := types.ParseCategory(v); c.Known() {
		return c, err
	}
	return DefaultCategory, err
}

func (p *Preferences) SetCategory(ctx context.Context, c string) error {
	return p.Set(ctx, KeyCategory, c)
}

func defaultFor(key string) (string, error) {
	switch key {
	case KeyLanguage:
		return string(DefaultLanguage), nil
	case KeyTheme:
		return string(DefaultTheme), nil
	case KeyCategory:
		return string(DefaultCategory), nil
	default:
		return "", fmt.Errorf("unknown preference %q (use %s)", key, strings.Join(Keys, ", "))
	}
}

func normalise(key, value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch key {
	case KeyLanguage:
		if !types.ValidLanguage(v) {
			return "", fmt.Errorf("unsupported language %q (use en, ta or hi)", value)
		}
		return v, nil
	case KeyTheme:
		t, ok := ParseTheme(v)
		if !ok {
			return "", fmt.Errorf("unsupported theme %q (use light, dark or system)", value)
		}
		return string(t), nil
	case KeyCategory:
		c := types.ParseCategory(v)
		if !c.Known() {
			return "", fmt.Errorf("unknown scan category %q", value)
		}
		return string(c), nil
	default:
		_, err := defaultFor(key)
		return "", err
	}
}
