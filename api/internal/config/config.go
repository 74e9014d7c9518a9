package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by AI_PROVIDER.
const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

// Config is the gateway process configuration. Upstream keys may be empty:
// a missing key is reported per request, never at boot.
type Config struct {
	Port string

	Provider string

	GatewayAPIKey string
	GatewayURL    string
	GatewayModel  string

	GeminiAPIKey string
	GeminiModel  string

	PromptFile     string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// BotConfig is the Telegram front-end configuration.
type BotConfig struct {
	Port             string
	TelegramBotToken string
	WebhookURL       string
	ScanAPIURL       string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("config: ignoring %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func Load() *Config {
	provider := strings.ToLower(getEnv("AI_PROVIDER", ProviderGateway))
	if provider != ProviderGemini {
		provider = ProviderGateway
	}
	return &Config{
		Port:     getEnv("PORT", "8000"),
		Provider: provider,

		GatewayAPIKey: getEnv("AI_GATEWAY_API_KEY", ""),
		GatewayURL:    strings.TrimRight(getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1"), "/"),
		GatewayModel:  getEnv("AI_GATEWAY_MODEL", "google/gemini-2.5-flash"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		PromptFile:     getEnv("PROMPT_FILE", ""),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 120)) * time.Second,
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_MB", 25)) << 20,
	}
}

func LoadBot() *BotConfig {
	return &BotConfig{
		Port:             getEnv("PORT", "8080"),
		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		ScanAPIURL:       strings.TrimRight(getEnv("SCAN_API_URL", "http://localhost:8000"), "/"),
	}
}
