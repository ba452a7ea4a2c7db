package bot

import (
	"context"
	"fmt"
	"time"

	"futureself/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// replyTimeout bounds one update, provider call included.
const replyTimeout = 90 * time.Second

type TelegramBot struct {
	bot    *tgbotapi.BotAPI
	dialog *Dialog
	logger *logger.Logger
}

func NewTelegramBot(token string, dialog *Dialog, logger *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	logger.Infow("Authorized on Telegram", "username", bot.Self.UserName)

	return &TelegramBot{
		bot:    bot,
		dialog: dialog,
		logger: logger,
	}, nil
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	// Polling and webhooks are mutually exclusive.
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := t.bot.GetUpdatesChan(updateConfig)
	t.logger.Info("Started receiving Telegram updates")

	go t.handleUpdates(ctx, updates)

	return nil
}

func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			continue
		}
		go func(message *tgbotapi.Message) {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Errorw("Recovered from panic while processing update", "error", r)
				}
			}()
			t.handleMessage(ctx, message)
		}(update.Message)
	}
}

func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	chatID := message.Chat.ID
	telegramID := message.From.ID

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	var reply string
	if message.IsCommand() {
		t.logger.Infow("Handling command", "command", message.Command(), "telegram_id", telegramID)
		reply = t.dialog.HandleCommand(ctx, telegramID, message.Command(), message.CommandArguments())
	} else {
		if _, err := t.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			t.logger.Warnw("Failed to send typing action", "chat_id", chatID, "error", err)
		}
		reply = t.dialog.HandleText(ctx, telegramID, message.Text)
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
		t.logger.Errorw("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// Stop gracefully shuts down the bot
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()

	// Allow time for in-flight handlers to finish.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}
