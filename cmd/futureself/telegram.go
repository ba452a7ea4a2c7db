package main

import (
	"context"
	"os/signal"
	"syscall"

	"futureself/internal/bot"

	"github.com/spf13/cobra"
)

func newTelegramCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, l, err := loadConfig(root)
			if err != nil {
				return err
			}
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			defer a.Close()

			dialog := bot.NewDialog(a.db, a.chat, a.resolver, l)
			telegramBot, err := bot.NewTelegramBot(cfg.Telegram.Token, dialog, l)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := telegramBot.Start(ctx); err != nil {
				return err
			}
			l.Info("Telegram bot started successfully")

			<-ctx.Done()
			l.Info("Shutting down bot...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := telegramBot.Stop(shutdownCtx); err != nil {
				l.Errorw("Error during bot shutdown", "error", err)
				return err
			}
			l.Info("Bot stopped successfully")
			return nil
		},
	}
}
