package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lbarone/chronos/internal/api"
	"github.com/lbarone/chronos/internal/assistant"
	"github.com/lbarone/chronos/internal/config"
	"github.com/lbarone/chronos/internal/handlers"
	"github.com/lbarone/chronos/internal/repository/postgres"
	"github.com/lbarone/chronos/internal/service"
	"github.com/lbarone/chronos/internal/telegram"
	"github.com/lbarone/chronos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting chronos...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Calendar display preferences
	view, err := config.LoadViewConfig(cfg.ViewConfigPath)
	if err != nil {
		l.Fatalf("Failed to load view configuration: %v", err)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db.DB)
	patientRepo := postgres.NewPatientRepository(db.DB)
	noteRepo := postgres.NewNoteRepository(db.DB)
	anamnesisRepo := postgres.NewAnamnesisRepository(db.DB)
	paymentRepo := postgres.NewPaymentRepository(db.DB)
	financeRepo := postgres.NewFinanceRepository(db.DB)
	healthRepo := postgres.NewHealthRepository(db.DB)
	settingsRepo := postgres.NewSettingsRepository(db.DB)

	// Service layer
	svc := service.New(db.DB, l, view,
		eventRepo, patientRepo, noteRepo, anamnesisRepo,
		paymentRepo, financeRepo, healthRepo, settingsRepo,
	)

	// Natural-language event parser (optional)
	var parser assistant.Parser
	if cfg.AssistantURL != "" {
		parser = assistant.NewClient(cfg.AssistantURL, cfg.AssistantKey, l)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Telegram bot and daily digest (optional)
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("agenda", handlers.NewAgendaHandler(svc, l))
		bot.RegisterCommand("week", handlers.NewWeekHandler(svc, l))
		bot.RegisterCommand("forecast", handlers.NewForecastHandler(svc, l))

		go func() {
			if err := svc.StartDigestScheduler(ctx, cfg.DigestCron, bot.SendDigest); err != nil {
				l.Errorf("Digest scheduler error: %v", err)
			}
		}()

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	} else {
		l.Info("TELEGRAM_TOKEN not set, bot and digest disabled")
	}

	// HTTP API
	apiServer := api.NewServer(svc, parser, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("chronos started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("chronos stopped")
}
