package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/phrasebook/internal/config"
	"github.com/at-ishikawa/phrasebook/internal/database"
	"github.com/at-ishikawa/phrasebook/internal/entry"
	"github.com/at-ishikawa/phrasebook/internal/generator/openai"
	"github.com/at-ishikawa/phrasebook/internal/search"
	"github.com/at-ishikawa/phrasebook/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(os.Getenv("PHRASEBOOK_CONFIG"))
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	defer func() {
		_ = openaiClient.Close()
	}()

	service := search.NewService(entry.NewDBRepository(db), openaiClient, slog.Default())
	handler := server.NewSearchHandler(service, slog.Default())
	mux := server.NewMux(handler, db)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: corsMiddleware(cfg.Server.AllowedOrigin, h2c.NewHandler(mux, &http2.Server{})),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Default().Info("starting server", "address", cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpServer.Shutdown > %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("httpServer.ListenAndServe > %w", err)
		}
		return nil
	}
}

func corsMiddleware(allowedOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
