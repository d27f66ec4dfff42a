package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storypals/internal/domain"
	"storypals/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de chat e historial.
type ChatHandler struct {
	logger      *zap.Logger
	chatServ    *service.ChatService
	historyServ *service.HistoryService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService, historyServ *service.HistoryService) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		chatServ:    chatServ,
		historyServ: historyServ,
	}
}

// PostMessage maneja POST /chat/message.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		CharacterID string `json:"character_id" binding:"required"`
		Content     string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.reply(c, req.CharacterID, req.Content)
}

// PublicMessage maneja POST /chat/public (sin autenticacion).
func (h *ChatHandler) PublicMessage(c *gin.Context) {
	var req struct {
		Character string `json:"character" binding:"required"`
		Content   string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid public chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.reply(c, req.Character, req.Content)
}

func (h *ChatHandler) reply(c *gin.Context, character, content string) {
	reply, err := h.chatServ.Reply(c.Request.Context(), character, content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUnknownCharacter):
			c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		case errors.Is(err, service.ErrReplyFailed):
			h.logger.Error("chat reply failed", zap.String("character", character), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "the character could not answer right now"})
		default:
			h.logger.Error("chat reply failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// GetHistory maneja GET /chat/history/:user_id/:character_id.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	userID := c.Param("user_id")
	if userID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	messages, err := h.historyServ.Get(c.Request.Context(), userID, c.Param("character_id"))
	if err != nil {
		h.logger.Error("get chat history failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SaveHistory maneja POST /chat/history y reemplaza el historial del par.
func (h *ChatHandler) SaveHistory(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		UserID      string               `json:"user_id" binding:"required"`
		CharacterID string               `json:"character_id" binding:"required"`
		Messages    []domain.ChatMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid save history request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.UserID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.historyServ.Save(c.Request.Context(), req.UserID, req.CharacterID, req.Messages); err != nil {
		if errors.Is(err, service.ErrHistoryInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid history"})
			return
		}
		h.logger.Error("save chat history failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "count": len(req.Messages)})
}

// SearchHistory maneja GET /chat/history?character=&search=&days=.
func (h *ChatHandler) SearchHistory(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	days, err := parseDays(c.Query("days"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}

	messages, err := h.historyServ.Search(c.Request.Context(), claims.UserID, service.HistoryFilter{
		CharacterID: c.Query("character"),
		Search:      c.Query("search"),
		Days:        days,
	})
	if err != nil {
		h.logger.Error("search chat history failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search history"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// parseDays acepta vacio (0, default del servicio) o un entero no negativo.
func parseDays(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, errors.New("invalid days")
	}
	return days, nil
}
