package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cybersafe/api/internal/logging"
)

const shutdownGrace = 15 * time.Second

// Run serves h on addr until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler, log logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", logging.F("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", logging.F("addr", addr))
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}

// Health is the plain-text liveness handler used by the bot's webhook server.
func Health(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}
