package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelzeko/petrodata/internal/api"
	"github.com/abelzeko/petrodata/internal/app"
	"github.com/abelzeko/petrodata/internal/config"
	"github.com/abelzeko/petrodata/internal/logging"
	"github.com/abelzeko/petrodata/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Bot exited")
	}
}

// run owns every deferred cleanup so a failed start still closes the store.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("PETRODATA_CONFIG"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	log.Info().Msg("Starting PetroData Bot...")

	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	a, err := app.New(ctx, cfg, observability.NewMetrics(), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	telegramBot, err := api.NewTelegramBot(cfg.TelegramBotToken, a.UseCase)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	telegramBot.Start(ctx)
	return nil
}
