package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tabshare/tabshare/internal/config"
	"github.com/tabshare/tabshare/internal/handler"
	"github.com/tabshare/tabshare/internal/realtime"
	"github.com/tabshare/tabshare/internal/service"
	"github.com/tabshare/tabshare/internal/storage/sqlite"
	"github.com/tabshare/tabshare/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogJSON)

	policy, err := service.ParseClaimPolicy(cfg.ClaimPolicy)
	if err != nil {
		slog.Error("Invalid claim policy", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	hub := realtime.NewHub()
	sessions := service.NewSessionService(store, hub)
	members := service.NewMemberService(store, hub)
	claims := service.NewClaimService(store, hub, policy)

	router := handler.NewRouter(sessions, members, claims, hub, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("Server starting", "address", cfg.Addr, "claim_policy", string(policy))
	if err := runServer(ctx, srv); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
