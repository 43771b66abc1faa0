package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/bot"
	"github.com/keetrykee/Kilua/internal/completion"
	"github.com/keetrykee/Kilua/internal/dispatch"
	"github.com/keetrykee/Kilua/internal/persona"
	"github.com/keetrykee/Kilua/internal/profile"
	"github.com/keetrykee/Kilua/internal/session"
	"github.com/keetrykee/Kilua/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}
	if cfg.Telegram.Token == "" {
		logger.Fatal("Telegram token is required (telegram.token or TELEGRAM_TOKEN)")
	}
	if cfg.OpenRouter.APIKey == "" {
		logger.Fatal("OpenRouter API key is required (openrouter.api_key or OPENROUTER_API_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize profile store
	var profiles profile.Store
	if cfg.Database.UsePostgres {
		logger.Info("Using PostgreSQL profile store")
		profiles, err = profile.NewPostgresStore(profile.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
	} else {
		logger.Info("Using file profile store", zap.String("path", cfg.Profiles.Path))
		profiles, err = profile.NewFileStore(cfg.Profiles.Path, logger)
	}
	if err != nil {
		logger.Fatal("Failed to initialize profile store", zap.Error(err))
	}
	defer profiles.Close()

	// Conversation state and dispatch pipeline
	registry := persona.NewRegistry()
	history := session.NewHistory(cfg.Dispatch.MaxHistory)
	cooldowns := session.NewCooldowns(time.Duration(cfg.Dispatch.CooldownMs) * time.Millisecond)
	classifier := dispatch.NewClassifier(cfg.Dispatch.Prefix, cfg.Dispatch.AmbientChance)

	completer := completion.NewClient(
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.BaseURL,
		cfg.OpenRouter.MaxTokens,
		time.Duration(cfg.OpenRouter.TimeoutSeconds)*time.Second,
		registry,
		history,
		logger,
	)

	dispatcher := dispatch.NewDispatcher(
		cfg.Dispatch.MessageLimit,
		time.Duration(cfg.Dispatch.ChunkDelayMs)*time.Millisecond,
		logger,
	)
	responder := dispatch.NewResponder(completer, history, cooldowns, dispatcher, logger)

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, classifier, responder, cooldowns, history, registry, profiles, cfg.Dispatch.Prefix, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Flush profiles on a fixed interval; Close flushes once more on
	// shutdown.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Profiles.SaveIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := profiles.Flush(ctx); err != nil {
					logger.Error("Failed to flush profiles", zap.Error(err))
				}
			}
		}
	}()

	// Start the bot
	if err := b.Start(ctx); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}

	logger.Info("Shutting down")
}
