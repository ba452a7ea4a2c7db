package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"futureself/internal/auth"
	"futureself/internal/gpt"
	"futureself/internal/models"
	"futureself/pkg/logger"

	"github.com/google/uuid"
)

// ChatService answers one chat turn for a linked user.
type ChatService interface {
	Reply(ctx context.Context, userID string, req models.ChatRequest) (string, error)
}

// Store holds Telegram links and resolves plans for /plan.
type Store interface {
	LinkTelegram(ctx context.Context, telegramID int64, userID string) error
	GetTelegramLink(ctx context.Context, telegramID int64) (string, error)
	GetPlan(ctx context.Context, userID, planID string) (*models.Plan, error)
	GetActivePlan(ctx context.Context, userID string) (*models.Plan, error)
}

const (
	textHelp = "I'm your future self. Talk to me like you would to a friend who already made it.\n\n" +
		"/link <token> connects this chat to your account\n" +
		"/plan <id> talks about a specific plan, /plan alone uses your active plan\n" +
		"/general goes back to open conversation\n" +
		"/help shows this message"
	textNotLinked   = "This chat isn't connected to an account yet. Send /link <token> first."
	textLinkUsage   = "Usage: /link <token>"
	textLinkInvalid = "That token didn't work. Grab a fresh one from the app and try again."
	textLinked      = "Connected. Say anything to start talking."
	textNoActive    = "You don't have an active plan yet. Staying in general conversation."
	textPlanMissing = "I couldn't find that plan. Staying where we were."
	textGeneral     = "Back to general conversation."
	textEmpty       = "Send me a message and I'll answer."
	textUnavailable = "Your future self is unavailable right now. Please try again in a moment."
	textFailed      = "Something went wrong. Please try again."
	textUnknown     = "Unknown command. Use /help to see what I understand."
)

// Dialog turns Telegram commands and messages into reply text. Each chat's
// scope (general or a plan) is kept in memory and resets on restart.
type Dialog struct {
	store    Store
	chat     ChatService
	resolver auth.Resolver
	logger   *logger.Logger

	scopes     map[int64]models.ChatContext
	scopeMutex sync.RWMutex
}

func NewDialog(store Store, chat ChatService, resolver auth.Resolver, l *logger.Logger) *Dialog {
	return &Dialog{
		store:    store,
		chat:     chat,
		resolver: resolver,
		logger:   l,
		scopes:   make(map[int64]models.ChatContext),
	}
}

// Scope returns the chat context plain messages from telegramID are sent in.
func (d *Dialog) Scope(telegramID int64) models.ChatContext {
	d.scopeMutex.RLock()
	defer d.scopeMutex.RUnlock()
	if c, ok := d.scopes[telegramID]; ok {
		return c
	}
	return models.GeneralContext{}
}

func (d *Dialog) setScope(telegramID int64, c models.ChatContext) {
	d.scopeMutex.Lock()
	d.scopes[telegramID] = c
	d.scopeMutex.Unlock()
}

// HandleCommand answers a bot command. args is everything after the command.
func (d *Dialog) HandleCommand(ctx context.Context, telegramID int64, command, args string) string {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		return textHelp
	case "link":
		return d.link(ctx, telegramID, args)
	case "general":
		d.setScope(telegramID, models.GeneralContext{})
		return textGeneral
	case "plan":
		return d.plan(ctx, telegramID, args)
	default:
		return textUnknown
	}
}

func (d *Dialog) link(ctx context.Context, telegramID int64, token string) string {
	if token == "" {
		return textLinkUsage
	}

	userID, err := d.resolver.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return textLinkInvalid
		}
		d.logger.Errorw("Failed to resolve link token", "telegram_id", telegramID, "error", err)
		return textFailed
	}

	if err := d.store.LinkTelegram(ctx, telegramID, userID); err != nil {
		d.logger.Errorw("Failed to save telegram link", "telegram_id", telegramID, "error", err)
		return textFailed
	}

	d.setScope(telegramID, models.GeneralContext{})
	d.logger.Infow("Linked telegram account", "telegram_id", telegramID, "user_id", userID)
	return textLinked
}

func (d *Dialog) plan(ctx context.Context, telegramID int64, planID string) string {
	userID, reply := d.linkedUser(ctx, telegramID)
	if reply != "" {
		return reply
	}

	var (
		plan *models.Plan
		err  error
	)
	if planID == "" {
		plan, err = d.store.GetActivePlan(ctx, userID)
	} else {
		id, parseErr := uuid.Parse(planID)
		if parseErr != nil {
			return textPlanMissing
		}
		plan, err = d.store.GetPlan(ctx, userID, id.String())
	}

	switch {
	case errors.Is(err, models.ErrNotFound) && planID == "":
		d.setScope(telegramID, models.GeneralContext{})
		return textNoActive
	case errors.Is(err, models.ErrNotFound):
		return textPlanMissing
	case err != nil:
		d.logger.Errorw("Failed to load plan", "telegram_id", telegramID, "plan_id", planID, "error", err)
		return textFailed
	}

	d.setScope(telegramID, models.PlanContext{PlanID: plan.ID})
	return fmt.Sprintf("Now talking about your plan %q. Use /general to switch back.", plan.Title)
}

// HandleText sends a plain message through the chat pipeline in the chat's
// current scope.
func (d *Dialog) HandleText(ctx context.Context, telegramID int64, text string) string {
	userID, reply := d.linkedUser(ctx, telegramID)
	if reply != "" {
		return reply
	}

	scope := d.Scope(telegramID)
	var planID string
	if pc, ok := scope.(models.PlanContext); ok {
		planID = pc.PlanID
	}

	req, err := models.ParseChatRequest(text, scope.Kind(), planID)
	if err != nil {
		return textEmpty
	}

	answer, err := d.chat.Reply(ctx, userID, req)
	if err == nil {
		return answer
	}

	var (
		providerErr    *gpt.ProviderError
		unavailableErr *gpt.UnavailableError
	)
	switch {
	case models.IsInvalidRequest(err):
		// The plan went away or changed owner since /plan.
		d.setScope(telegramID, models.GeneralContext{})
		return textPlanMissing + " " + textGeneral
	case errors.As(err, &providerErr), errors.As(err, &unavailableErr):
		d.logger.Warnw("Provider failed for telegram turn", "telegram_id", telegramID, "error", err)
		return textUnavailable
	default:
		d.logger.Errorw("Telegram chat turn failed", "telegram_id", telegramID, "error", err)
		return textFailed
	}
}

// linkedUser returns the linked user id, or the reply to send instead.
func (d *Dialog) linkedUser(ctx context.Context, telegramID int64) (string, string) {
	userID, err := d.store.GetTelegramLink(ctx, telegramID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "", textNotLinked
	case err != nil:
		d.logger.Errorw("Failed to load telegram link", "telegram_id", telegramID, "error", err)
		return "", textFailed
	}
	return userID, ""
}
