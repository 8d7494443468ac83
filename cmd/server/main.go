package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/movieclubhq/movieclub-server/internal/comments"
	"github.com/movieclubhq/movieclub-server/internal/config"
	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/notifier"
	"github.com/movieclubhq/movieclub-server/internal/reactions"
	"github.com/movieclubhq/movieclub-server/internal/rotation"
	"github.com/movieclubhq/movieclub-server/internal/storage"
	"github.com/movieclubhq/movieclub-server/internal/suggestions"
	"github.com/movieclubhq/movieclub-server/internal/validator"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	v := validator.New()
	n := notifier.New(cfg.WebhookURLs, store, cfg.NotifyMaxAttempts)
	engine := rotation.NewEngine(store, n)

	srv := newServer(cfg, serverDeps{
		engine:      engine,
		toggler:     reactions.NewToggler(store, n),
		comments:    comments.NewService(store, n, v),
		suggestions: suggestions.NewService(store, v),
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	tickerCtx, stopTicker := context.WithCancel(ctx)
	go runRotationTicker(tickerCtx, store, engine, cfg.RotationCheckEvery)

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)
		stopTicker()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

// dueClubSource is the slice of storage the ticker needs.
type dueClubSource interface {
	DueClubs(ctx context.Context, now time.Time) ([]string, error)
}

// runRotationTicker periodically rotates clubs whose cached end date has
// passed. Not-due and empty-queue outcomes are expected and only logged; the
// engine re-checks the precise boundary inside its transaction.
func runRotationTicker(ctx context.Context, store dueClubSource, engine *rotation.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		clubs, err := store.DueClubs(ctx, time.Now())
		if err != nil {
			slog.Warn("Due-club scan failed", "error", err)
			continue
		}
		for _, clubID := range clubs {
			res, err := engine.Rotate(ctx, clubID, models.SystemCaller)
			if err != nil {
				slog.Warn("Scheduled rotation failed", "club", clubID, "error", err)
				continue
			}
			slog.Info("Scheduled rotation done", "club", clubID,
				"rotated", res.Rotated, "newMovie", res.NewMovieID, "reason", res.Reason)
		}
	}
}
