package server

import (
	"context"
	"errors"
	"net/http"

	"futureself/internal/auth"
	"futureself/internal/gpt"
	"futureself/internal/models"
	"futureself/internal/prompt"
	"futureself/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatService answers one chat turn for an authenticated user.
type ChatService interface {
	Reply(ctx context.Context, userID string, req models.ChatRequest) (string, error)
}

type Handler struct {
	chat     ChatService
	resolver auth.Resolver
	logger   *logger.Logger
}

func NewHandler(chat ChatService, resolver auth.Resolver, l *logger.Logger) *Handler {
	return &Handler{chat: chat, resolver: resolver, logger: l}
}

type chatBody struct {
	Message     string `json:"message"`
	ContextType string `json:"context_type"`
	PlanID      string `json:"plan_id"`
}

const (
	msgUnavailable = "Your future self is unavailable right now. Please try again in a moment."
	msgInternal    = "Something went wrong. Please try again."
)

// Chat handles POST /v1/chat.
func (h *Handler) Chat(c *gin.Context) {
	log := h.logger.With("request_id", c.GetString("request_id"))

	token, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
		return
	}

	userID, err := h.resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user token"})
			return
		}
		log.Errorw("Failed to resolve credential", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgUnavailable})
		return
	}

	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON with a message"})
		return
	}

	req, err := models.ParseChatRequest(body.Message, body.ContextType, body.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chat.Reply(c.Request.Context(), userID, req)
	if err != nil {
		status, msg := errorResponse(err)
		log.Errorw("Chat turn failed", "user_id", userID, "context", req.Context.Kind(), "status", status, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": reply})
}

// errorResponse maps pipeline errors to a status and a user-facing message.
// Provider details stay in the logs.
func errorResponse(err error) (int, string) {
	var (
		invalid     *models.InvalidRequestError
		provider    *gpt.ProviderError
		unavailable *gpt.UnavailableError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case errors.As(err, &provider), errors.As(err, &unavailable):
		return http.StatusBadGateway, msgUnavailable
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// CategoryQuestions handles GET /v1/categories/:name/questions.
func (h *Handler) CategoryQuestions(c *gin.Context) {
	cat, _ := prompt.LookupCategory(c.Param("name"))
	c.JSON(http.StatusOK, cat)
}
