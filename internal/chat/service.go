// Package chat runs the future-self conversation pipeline: aggregate the
// user's state, compile the system prompt, window the history, dispatch to
// the provider and persist the exchange.
//
// Each call is independent and holds no state between requests. Two turns
// submitted concurrently on the same thread both read history before either
// is persisted, so each may window a slightly stale tail. Stored data stays
// correct; only the context the provider sees is affected. This is accepted
// and not serialized here.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"futureself/internal/gpt"
	"futureself/internal/history"
	"futureself/internal/models"
	"futureself/internal/prompt"
	"futureself/internal/tokens"
	"futureself/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatcher sends the compiled request to the generative-text provider.
type Dispatcher interface {
	Reply(ctx context.Context, system string, history []models.Message, message string) (string, error)
}

type Config struct {
	FetchLimit      int
	SendLimit       int
	PersistAttempts int
	PersistBackoff  time.Duration
	PersistTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		FetchLimit:      history.FetchLimit,
		SendLimit:       history.SendLimit,
		PersistAttempts: 3,
		PersistBackoff:  200 * time.Millisecond,
		PersistTimeout:  10 * time.Second,
	}
}

type Service struct {
	store    Store
	provider Dispatcher
	metrics  *Metrics
	logger   *logger.Logger

	fetchLimit      int
	sendLimit       int
	persistAttempts int
	persistBackoff  time.Duration
	persistTimeout  time.Duration
	countTokens     func(string) int
}

// NewService wires the pipeline. Zero config fields take DefaultConfig
// values; a nil metrics gets a private registry.
func NewService(store Store, provider Dispatcher, metrics *Metrics, l *logger.Logger, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = def.FetchLimit
	}
	if cfg.SendLimit <= 0 {
		cfg.SendLimit = def.SendLimit
	}
	if cfg.PersistAttempts <= 0 {
		cfg.PersistAttempts = def.PersistAttempts
	}
	if cfg.PersistBackoff <= 0 {
		cfg.PersistBackoff = def.PersistBackoff
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = def.PersistTimeout
	}
	if metrics == nil {
		metrics = MustNewMetrics(prometheus.NewRegistry())
	}
	if l == nil {
		l = logger.NewNop()
	}

	return &Service{
		store:           store,
		provider:        provider,
		metrics:         metrics,
		logger:          l,
		fetchLimit:      cfg.FetchLimit,
		sendLimit:       min(cfg.SendLimit, cfg.FetchLimit),
		persistAttempts: cfg.PersistAttempts,
		persistBackoff:  cfg.PersistBackoff,
		persistTimeout:  cfg.PersistTimeout,
		countTokens:     tokens.Count,
	}
}

// WithTokenCounter replaces the prompt token counter.
func (s *Service) WithTokenCounter(fn func(string) int) *Service {
	s.countTokens = fn
	return s
}

// Preview is the provider request a turn would send, without the new message.
type Preview struct {
	SystemPrompt string
	Window       []models.Message
	PromptTokens int
	Snapshot     Snapshot
}

// Preview runs aggregation, compilation and windowing only.
func (s *Service) Preview(ctx context.Context, userID string, c models.ChatContext) (*Preview, error) {
	snap := s.Aggregate(ctx, userID, c)

	scope, err := BuildScope(c, snap)
	if err != nil {
		return nil, err
	}
	system, err := prompt.Compile(scope)
	if err != nil {
		return nil, err
	}
	window := history.Window(snap.History, s.sendLimit)

	return &Preview{
		SystemPrompt: system,
		Window:       window,
		PromptTokens: s.promptTokens(system, window, ""),
		Snapshot:     snap,
	}, nil
}

// Reply handles one chat turn and returns the future-self message. Errors are
// *models.InvalidRequestError, *gpt.ProviderError or *gpt.UnavailableError;
// persistence failures after a successful reply are logged, not returned.
func (s *Service) Reply(ctx context.Context, userID string, req models.ChatRequest) (string, error) {
	kind := req.Context.Kind()
	log := s.logger.With("user_id", userID, "context", kind)

	preview, err := s.Preview(ctx, userID, req.Context)
	if err != nil {
		s.metrics.turns.WithLabelValues(kind, outcome(err)).Inc()
		return "", err
	}

	promptTokens := s.promptTokens(preview.SystemPrompt, preview.Window, req.Message)
	s.metrics.promptTokens.WithLabelValues(kind).Observe(float64(promptTokens))
	log.Debugw("Dispatching chat turn",
		"history_messages", len(preview.Window), "prompt_tokens", promptTokens)

	start := time.Now()
	reply, err := s.provider.Reply(ctx, preview.SystemPrompt, preview.Window, req.Message)
	s.metrics.providerDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		// A transport error caused by the caller leaving is a cancellation,
		// not a provider outage.
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.metrics.turns.WithLabelValues(kind, outcome(ctxErr)).Inc()
			log.Infow("Request cancelled during provider call", "error", err)
			return "", fmt.Errorf("chat turn abandoned: %w", ctxErr)
		}
		s.metrics.turns.WithLabelValues(kind, outcome(err)).Inc()
		log.Errorw("Provider call failed", "error", err)
		return "", err
	}

	// A caller that went away before the reply arrived gets nothing persisted.
	if err := ctx.Err(); err != nil {
		s.metrics.turns.WithLabelValues(kind, outcome(err)).Inc()
		log.Infow("Request cancelled before reply was delivered, discarding exchange")
		return "", fmt.Errorf("chat turn abandoned: %w", err)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	ex := NewExchange(userID, req.Message, reply)
	if err := s.PersistExchange(persistCtx, models.ThreadFor(userID, req.Context), &ex); err != nil {
		// The user already has their answer; PersistExchange logged and counted it.
		log.Warnw("Reply delivered without being saved", "error", err)
	}

	s.metrics.turns.WithLabelValues(kind, "ok").Inc()
	return reply, nil
}

func (s *Service) promptTokens(system string, window []models.Message, message string) int {
	n := s.countTokens(system) + s.countTokens(message)
	for _, m := range window {
		n += s.countTokens(m.Content)
	}
	return n
}

func outcome(err error) string {
	var (
		providerErr    *gpt.ProviderError
		unavailableErr *gpt.UnavailableError
	)
	switch {
	case models.IsInvalidRequest(err):
		return "invalid_request"
	case errors.As(err, &providerErr):
		return "provider_error"
	case errors.As(err, &unavailableErr):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
