package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybersafe/api/internal/llm/types"
)

func TestDefault_AllTemplatesPresent(t *testing.T) {
	c := Default()

	seen := map[string]types.Category{}
	for _, cat := range types.Categories {
		s := c.ScanSystem(cat)
		require.NotEmpty(t, s, cat)
		if prev, dup := seen[s]; dup {
			t.Fatalf("%s and %s share a template", prev, cat)
		}
		seen[s] = cat
	}
	assert.NotEmpty(t, c.TranscribeSystem())
	assert.Equal(t, "Please transcribe the following audio:", c.TranscribeUser())
}

func TestScanSystem_UnknownUsesAppSecurity(t *testing.T) {
	c := Default()

	want := c.ScanSystem(types.CategoryAppSecurity)
	assert.Equal(t, want, c.ScanSystem(types.CategoryUnknown))
	assert.Equal(t, want, c.ScanSystem(types.ParseCategory("ransomware")))
}

func TestScanSystem_DarkWebIsEducational(t *testing.T) {
	assert.Contains(t, Default().ScanSystem(types.CategoryDarkWeb), `status: "info"`)
}

func TestScanUser(t *testing.T) {
	c := Default()

	assert.Equal(t,
		"Analyze the following call transcript/message: pay now",
		c.ScanUser(types.CategoryScamDetector, "pay now", ""))
	assert.Equal(t,
		"Analyze the following content: CAMERA, CONTACTS (File: app.apk)",
		c.ScanUser(types.CategoryAppSecurity, "CAMERA, CONTACTS", "app.apk"))
	assert.Equal(t,
		"Analyze the following content: x",
		c.ScanUser(types.CategoryUnknown, "x", "  "))
}

func TestLessonSystem_LanguageDirective(t *testing.T) {
	c := Default()

	assert.Contains(t, c.LessonSystem(types.LanguageEnglish), "Respond in English.")
	assert.Contains(t, c.LessonSystem(types.LanguageTamil), "Respond in Tamil")
	assert.Contains(t, c.LessonSystem(types.LanguageHindi), "Respond in Hindi")
	assert.Contains(t, c.LessonSystem(types.ParseLanguage("de")), "Respond in English.")
	assert.NotContains(t, c.LessonSystem(types.LanguageEnglish), "{{language}}")
	assert.Contains(t, c.LessonSystem(types.LanguageEnglish), `"keyTakeaways"`)
}

func TestLessonUser(t *testing.T) {
	u := Default().LessonUser("UPI fraud")
	assert.Contains(t, u, `about: "UPI fraud"`)
	assert.Contains(t, u, "3 quiz questions")
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  deepfake: custom deepfake prompt\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom deepfake prompt", c.ScanSystem(types.CategoryDeepfake))
	assert.Equal(t, Default().ScanSystem(types.CategoryNetwork), c.ScanSystem(types.CategoryNetwork))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unterminated"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
