// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/abelzeko/petrodata/internal/entities"
	"github.com/abelzeko/petrodata/internal/report"
	"github.com/abelzeko/petrodata/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const helpText = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/dashboard - Show the operational overview\n" +
	"/report [daily|weekly|monthly] [YYYY-MM-DD] - Show a period report\n" +
	"/audit [daily|weekly|monthly] [YYYY-MM-DD] - Run the AI audit for a period\n" +
	"/recent - Show the latest field activity\n" +
	"/export - Download all reports as CSV\n" +
	"/help - Show this help message"

// sender is the part of tgbotapi.BotAPI the bot uses to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	sender  sender
	useCase *usecases.ReportUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.ReportUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		sender:  bot,
		useCase: useCase,
	}, nil
}

// Start listens for Telegram messages until ctx is cancelled.
func (t *TelegramBot) Start(ctx context.Context) {
	log.Info().Msgf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Info().Msg("Bot is now listening for messages...")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			log.Info().Msg("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}

			log.Debug().
				Str("user", userName(update.Message)).
				Int64("chat", update.Message.Chat.ID).
				Msgf("Received message: %s", update.Message.Text)

			t.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage replies to a single Telegram message
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	var reply tgbotapi.Chattable
	if message.IsCommand() {
		reply = t.handleCommand(ctx, message)
	} else {
		reply = tgbotapi.NewMessage(message.Chat.ID, "I don't understand. Use /help to see available commands.")
	}

	if _, err := t.sender.Send(reply); err != nil {
		log.Error().Err(err).Str("user", userName(message)).Msg("Error sending message")
	}
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) tgbotapi.Chattable {
	chatID := message.Chat.ID
	args := message.CommandArguments()
	log.Info().Msgf("Handling /%s command with args '%s' for user %s", message.Command(), args, userName(message))

	switch message.Command() {
	case "start":
		return tgbotapi.NewMessage(chatID, "Welcome to PetroData! Use /dashboard for the operational overview or /help for more information.")

	case "help":
		return tgbotapi.NewMessage(chatID, helpText)

	case "dashboard":
		return tgbotapi.NewMessage(chatID, formatDashboard(t.useCase.Dashboard(ctx)))

	case "report":
		kind, anchor, err := t.parsePeriodArgs(args)
		if err != nil {
			return tgbotapi.NewMessage(chatID, err.Error())
		}
		return tgbotapi.NewMessage(chatID, t.useCase.FormatReport(t.useCase.Report(ctx, kind, anchor)))

	case "audit":
		kind, anchor, err := t.parsePeriodArgs(args)
		if err != nil {
			return tgbotapi.NewMessage(chatID, err.Error())
		}
		return tgbotapi.NewMessage(chatID, t.useCase.Audit(ctx, kind, anchor))

	case "recent":
		recent := t.useCase.Recent(ctx, usecases.RecentLimit)
		return tgbotapi.NewMessage(chatID, "Recent field activity:\n\n"+t.useCase.FormatReports(recent))

	case "export":
		name, content := t.useCase.Export(ctx)
		if content == "" {
			return tgbotapi.NewMessage(chatID, "No reports to export.")
		}
		return tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: []byte(content)})

	default:
		log.Warn().Msgf("Received unknown command /%s from user %s", message.Command(), userName(message))
		return tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see available commands.")
	}
}

// parsePeriodArgs reads "[kind] [date]". Kind defaults to daily and date to today.
func (t *TelegramBot) parsePeriodArgs(args string) (report.PeriodKind, entities.Date, error) {
	parts := strings.Fields(args)
	kind := report.PeriodDay
	if len(parts) > 0 {
		kind = report.ParsePeriodKind(parts[0])
	}

	anchor := t.useCase.Today()
	if len(parts) > 1 {
		d, err := entities.ParseDate(parts[1])
		if err != nil {
			return kind, anchor, fmt.Errorf("Invalid date %q. Example: /report weekly 2024-03-15", parts[1])
		}
		anchor = d
	}
	return kind, anchor, nil
}

func formatDashboard(d usecases.Dashboard) string {
	var b strings.Builder
	b.WriteString("Operational Overview\n\n")
	b.WriteString(fmt.Sprintf("🛢️ Total Oil (All Time): %.0f BBL\n", d.TotalOil))
	b.WriteString(fmt.Sprintf("📍 Active Wells: %d\n", d.ActiveWellCount))
	b.WriteString(fmt.Sprintf("⚠️ Employees Affected: %d (%s)\n", d.TotalEmployeesAffected, d.SafetyStatus))
	b.WriteString(fmt.Sprintf("🌤️ Current Weather: %s", d.CurrentWeather))
	return b.String()
}

func userName(message *tgbotapi.Message) string {
	if message.From == nil {
		return ""
	}
	return message.From.UserName
}
