package main

import (
	"context"
	"fmt"
	"time"

	"futureself/config"
	"futureself/internal/auth"
	"futureself/internal/chat"
	"futureself/internal/db"
	"futureself/internal/gpt"
	"futureself/internal/tokens"
	"futureself/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wiring shared by the long-running commands.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *db.PostgresDB
	resolver *auth.SupabaseResolver
	registry *prometheus.Registry
	chat     *chat.Service
}

func loadConfig(opt *rootOptions) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadFrom(opt.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	l := logger.New()
	if cfg.Log.Development {
		l = logger.NewDevelopment()
	}
	return cfg, l, nil
}

// connectDB retries with a growing pause; the database often starts after us.
func connectDB(ctx context.Context, cfg config.DBConfig, l *logger.Logger) (*db.PostgresDB, error) {
	var (
		database *db.PostgresDB
		err      error
	)
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		database, err = db.NewPostgresDB(ctx, cfg)
		if err == nil {
			return database, nil
		}
		l.Errorw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

func newApp(ctx context.Context, cfg *config.Config, l *logger.Logger) (*app, error) {
	// Chat turns estimate token counts until the encoding arrives.
	tokens.Warm()

	database, err := connectDB(ctx, cfg.DB, l)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider := gpt.NewClient(gpt.Config{
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Timeout:     cfg.Provider.Timeout,
	})

	service := chat.NewService(database, provider, chat.MustNewMetrics(registry), l, chat.Config{
		FetchLimit:      cfg.Chat.HistoryFetchLimit,
		SendLimit:       cfg.Chat.HistorySendLimit,
		PersistAttempts: cfg.Chat.PersistAttempts,
		PersistBackoff:  cfg.Chat.PersistBackoff,
		PersistTimeout:  cfg.Chat.PersistTimeout,
	})

	resolver := auth.NewSupabaseResolver(auth.Config{
		URL:       cfg.Auth.URL,
		APIKey:    cfg.Auth.APIKey,
		CacheSize: cfg.Auth.CacheSize,
		CacheTTL:  cfg.Auth.CacheTTL,
		Timeout:   cfg.Auth.Timeout,
	})

	l.Infow("Chat pipeline ready", "model", provider.Model(), "base_url", cfg.Provider.BaseURL)

	return &app{
		cfg:      cfg,
		logger:   l,
		db:       database,
		resolver: resolver,
		registry: registry,
		chat:     service,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}
