package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leanbot-chat/internal/service"
)

// ChatHandler expone los endpoints REST del widget de chat.
type ChatHandler struct {
	logger   *zap.Logger
	registry *service.SessionRegistry
}

// NewChatHandler crea un ChatHandler sobre el registry de sesiones.
func NewChatHandler(logger *zap.Logger, registry *service.SessionRegistry) *ChatHandler {
	return &ChatHandler{logger: logger, registry: registry}
}

// PostMessage maneja POST /chat/message. Con session_id vacío abre una sesión
// nueva y devuelve su id junto con la respuesta.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
		Content   string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	svc := h.registry.Resolve(req.SessionID)
	bot, err := svc.Send(c.Request.Context(), req.Content)
	if err != nil {
		var rl *service.RateLimitError
		switch {
		case errors.As(err, &rl):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": rl.RetryAfter,
			})
		case errors.Is(err, service.ErrSendInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "a message is already being processed"})
		default:
			// El pipeline dejó un mensaje explicativo del bot; lo devolvemos
			// con la clase de fallo para que el cliente lo muestre igual.
			c.JSON(http.StatusBadGateway, gin.H{
				"session_id":  svc.SessionID(),
				"bot_message": bot,
				"error":       err.Error(),
			})
		}
		return
	}
	if bot == nil {
		c.JSON(http.StatusOK, gin.H{"session_id": svc.SessionID()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  svc.SessionID(),
		"bot_message": bot,
	})
}

// GetHistory maneja GET /chat/:session_id/history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	svc, ok := h.registry.Lookup(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": svc.SessionID(),
		"loading":    svc.IsLoading(),
		"messages":   svc.Messages(),
	})
}
