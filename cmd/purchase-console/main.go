package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/procurement/internal/api"
	"github.com/jafarshop/procurement/internal/bootstrap"
	"github.com/jafarshop/procurement/internal/config"
	"github.com/jafarshop/procurement/internal/locale"
	"github.com/jafarshop/procurement/internal/notify"
	"github.com/jafarshop/procurement/internal/procurement"
	"github.com/jafarshop/procurement/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := bootstrap.OpenSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer closeSessions()

	printer := locale.NewPrinter(locale.Parse(cfg.Language))
	client := procurement.NewClient(cfg.API, sessions, logger)
	// Requests collect their own notices; anything raised outside one goes to stdout
	console := notify.NewConsole(os.Stdout, nil, printer)

	builder := service.NewCartBuilder(client, sessions, console, printer, cfg.API.LogoutDelay, logger)
	builder.OnSessionExpired(func() {
		logger.Warn("Session expired; run the login command to continue")
	})
	defer builder.Close()

	router := api.NewRouter(cfg, api.Services{
		Cart:      builder,
		Inventory: service.NewInventoryService(client, sessions, printer, logger),
		Sessions:  sessions,
		Health:    client.Health,
		Printer:   printer,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Purchase console listening",
			zap.String("addr", srv.Addr),
			zap.String("api", cfg.API.BaseURL),
			zap.String("session_backend", cfg.Session.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
