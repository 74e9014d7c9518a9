package main

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cybersafe/api/internal/client"
	"cybersafe/api/internal/config"
	"cybersafe/api/internal/httpserver"
	"cybersafe/api/internal/logging"
	"cybersafe/api/internal/prefs"
	"cybersafe/api/internal/store"
	"cybersafe/api/internal/telegram"
)

func main() {
	// a local .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.LoadBot()
	log := logging.NewStdout("bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Preferences ---
	var (
		kv prefs.Store = store.NewMemoryKV()
		db *sql.DB
	)
	if dsn := store.ResolveDSN(os.Getenv); dsn != "" {
		var (
			d   store.Dialect
			err error
		)
		db, d, err = store.Open(ctx, dsn)
		if err != nil {
			log.Error("prefs db", logging.Err(err))
			os.Exit(1)
		}
		defer db.Close()
		repo := store.NewPrefsRepo(db, d)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Error("prefs schema", logging.Err(err))
			os.Exit(1)
		}
		kv = repo
		log.Info("prefs db connected", logging.F("db", store.SafeDSNSummary(dsn)))
	} else {
		log.Warn("no prefs database configured; preferences are kept in memory")
	}

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Error("telegram", logging.Err(err))
		os.Exit(1)
	}
	bot.Debug = false

	api := client.New(cfg.ScanAPIURL).WithLogger(log.With(logging.F("component", "client")))
	r := &telegram.Router{
		Bot:   bot,
		API:   api,
		Prefs: kv,
		Log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			pctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", httpserver.Health("cybersafe telegram bot"))

	updates := make(chan tgbotapi.Update, 64)
	g, gctx := errgroup.WithContext(ctx)

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		path, err := registerWebhook(bot, webhookURL)
		if err != nil {
			log.Error("webhook", logging.Err(err))
			os.Exit(1)
		}
		mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
			upd, err := bot.HandleUpdate(req)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			select {
			case updates <- *upd:
			case <-req.Context().Done():
			}
		})
		log.Info("webhook mode", logging.F("path", path))
	} else {
		log.Info("polling mode")
		g.Go(func() error {
			defer close(updates)
			poller := &telegram.Poller{Bot: bot, Log: log.With(logging.F("component", "poller"))}
			poller.Run(gctx, func(upd tgbotapi.Update) {
				select {
				case updates <- upd:
				case <-gctx.Done():
				}
			})
			return nil
		})
	}

	g.Go(func() error {
		return httpserver.Run(gctx, "0.0.0.0:"+cfg.Port, mux, log)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case upd, ok := <-updates:
				if !ok {
					return nil
				}
				// scans take seconds; keep the loop free
				go r.HandleUpdate(gctx, upd)
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error("bot stopped", logging.Err(err))
		os.Exit(1)
	}
}

// ---------------- Modes -----------------

func registerWebhook(bot *tgbotapi.BotAPI, baseURL string) (string, error) {
	// secret path derived from the token
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return "", err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return "", err
	}
	return path, nil
}

// ---------------- Helpers -----------------

// shortHash names the webhook path. FNV-64a is stable per token and is not a
// secret on its own.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
