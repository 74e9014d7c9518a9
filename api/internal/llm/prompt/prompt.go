package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cybersafe/api/internal/llm/types"
)

//go:embed prompts.yaml
var embedded []byte

// Catalog holds every instruction template the engines send upstream.
type Catalog struct {
	Scan struct {
		AppSecurity  string `yaml:"app_security"`
		ScamDetector string `yaml:"scam_detector"`
		Deepfake     string `yaml:"deepfake"`
		Network      string `yaml:"network"`
		DarkWeb      string `yaml:"dark_web"`
	} `yaml:"scan"`

	Transcribe struct {
		System string `yaml:"system"`
		User   string `yaml:"user"`
	} `yaml:"transcribe"`

	Lesson struct {
		System    string `yaml:"system"`
		User      string `yaml:"user"`
		Languages struct {
			English string `yaml:"en"`
			Tamil   string `yaml:"ta"`
			Hindi   string `yaml:"hi"`
		} `yaml:"languages"`
	} `yaml:"lesson"`
}

// Default returns the embedded catalogue.
func Default() *Catalog {
	var c Catalog
	if err := yaml.Unmarshal(embedded, &c); err != nil {
		panic(fmt.Sprintf("prompt: embedded catalogue: %v", err))
	}
	return &c
}

// Load decodes path over the embedded catalogue, so a file only needs the
// keys it overrides. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	c := Default()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("prompt: bad catalogue %s: %w", path, err)
	}
	return c, nil
}

// ScanSystem picks the instruction for a category. Unknown categories get
// the app-security template.
func (c *Catalog) ScanSystem(cat types.Category) string {
	var s string
	switch cat {
	case types.CategoryAppSecurity:
		s = c.Scan.AppSecurity
	case types.CategoryScamDetector:
		s = c.Scan.ScamDetector
	case types.CategoryDeepfake:
		s = c.Scan.Deepfake
	case types.CategoryNetwork:
		s = c.Scan.Network
	case types.CategoryDarkWeb:
		s = c.Scan.DarkWeb
	default:
		s = c.Scan.AppSecurity
	}
	return strings.TrimSpace(s)
}

func (c *Catalog) ScanUser(cat types.Category, content, fileName string) string {
	subject := "content"
	if cat == types.CategoryScamDetector {
		subject = "call transcript/message"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following %s: %s", subject, content)
	if fn := strings.TrimSpace(fileName); fn != "" {
		fmt.Fprintf(&b, " (File: %s)", fn)
	}
	return b.String()
}

func (c *Catalog) TranscribeSystem() string { return strings.TrimSpace(c.Transcribe.System) }
func (c *Catalog) TranscribeUser() string   { return strings.TrimSpace(c.Transcribe.User) }

func (c *Catalog) LanguageInstruction(lang types.Language) string {
	switch lang {
	case types.LanguageTamil:
		return c.Lesson.Languages.Tamil
	case types.LanguageHindi:
		return c.Lesson.Languages.Hindi
	default:
		return c.Lesson.Languages.English
	}
}

func (c *Catalog) LessonSystem(lang types.Language) string {
	return strings.TrimSpace(strings.ReplaceAll(c.Lesson.System, "{{language}}", c.LanguageInstruction(lang)))
}

func (c *Catalog) LessonUser(topic string) string {
	return strings.TrimSpace(strings.ReplaceAll(c.Lesson.User, "{{topic}}", topic))
}
