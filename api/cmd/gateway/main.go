package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cybersafe/api/internal/config"
	"cybersafe/api/internal/handle"
	"cybersafe/api/internal/httpserver"
	"cybersafe/api/internal/llm"
	"cybersafe/api/internal/llm/gateway"
	"cybersafe/api/internal/llm/gemini"
	"cybersafe/api/internal/llm/prompt"
	"cybersafe/api/internal/logging"
)

func main() {
	// a local .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.NewStdout("gateway")

	prompts := prompt.Default()
	if cfg.PromptFile != "" {
		p, err := prompt.Load(cfg.PromptFile)
		if err != nil {
			log.Error("prompt file", logging.F("path", cfg.PromptFile), logging.Err(err))
			os.Exit(1)
		}
		prompts = p
		log.Info("prompts loaded", logging.F("path", cfg.PromptFile))
	}

	// keys are checked per request so the process boots without them
	gw := gateway.New(cfg.GatewayAPIKey, cfg.GatewayModel, cfg.GatewayURL, prompts).WithLogger(log)
	gm := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, prompts).WithLogger(log)

	engines := &llm.Engines{Default: gw, Gateway: gw, Gemini: gm}
	if cfg.Provider == config.ProviderGemini {
		engines.Default = gm
	}
	log.Info("engines ready",
		logging.F("default", engines.Default.Name()),
		logging.F("model", engines.Default.GetModel()))

	h := handle.New(engines, handle.Options{
		Logger:       log,
		Timeout:      cfg.RequestTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpserver.Run(ctx, ":"+cfg.Port, h.Routes(), log); err != nil {
		log.Error("server stopped", logging.Err(err))
		os.Exit(1)
	}
}
