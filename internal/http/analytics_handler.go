package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storypals/internal/service"
)

// AnalyticsHandler expone la actividad de chat, el progreso de aprendizaje y
// las notas de los padres.
type AnalyticsHandler struct {
	logger        *zap.Logger
	analyticsServ *service.AnalyticsService
	progressServ  *service.ProgressService
}

func NewAnalyticsHandler(logger *zap.Logger, analyticsServ *service.AnalyticsService, progressServ *service.ProgressService) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, analyticsServ: analyticsServ, progressServ: progressServ}
}

// Interactions maneja GET /analytics/interactions?days=N.
func (h *AnalyticsHandler) Interactions(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	days, err := parseDays(c.Query("days"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}
	report, err := h.analyticsServ.Interactions(c.Request.Context(), claims.UserID, days)
	if err != nil {
		h.logger.Error("interactions report failed", zap.String("user_id", claims.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ChildProgress maneja GET /analytics/progress?child_id=ID.
func (h *AnalyticsHandler) ChildProgress(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	childID, ok := requireChildID(c)
	if !ok {
		return
	}
	progress, err := h.progressServ.Progress(c.Request.Context(), claims.UserID, childID)
	if err != nil {
		h.progressError(c, "list progress failed", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// RecordProgress maneja POST /analytics/progress.
func (h *AnalyticsHandler) RecordProgress(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		ChildID           string   `json:"child_id" binding:"required"`
		CharacterID       string   `json:"character_id" binding:"required"`
		VocabularyLearned []string `json:"vocabulary_learned"`
		TopicsDiscussed   []string `json:"topics_discussed"`
		EngagementScore   float64  `json:"engagement_score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid progress request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	progress, err := h.progressServ.RecordProgress(c.Request.Context(), claims.UserID, service.ProgressInput{
		ChildID:         req.ChildID,
		CharacterID:     req.CharacterID,
		Vocabulary:      req.VocabularyLearned,
		Topics:          req.TopicsDiscussed,
		EngagementScore: req.EngagementScore,
	})
	if err != nil {
		h.progressError(c, "record progress failed", err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

// ChildReviews maneja GET /analytics/reviews?child_id=ID.
func (h *AnalyticsHandler) ChildReviews(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	childID, ok := requireChildID(c)
	if !ok {
		return
	}
	reviews, err := h.progressServ.Reviews(c.Request.Context(), claims.UserID, childID)
	if err != nil {
		h.progressError(c, "list reviews failed", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// CreateReview maneja POST /analytics/reviews.
func (h *AnalyticsHandler) CreateReview(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		ChildID     string `json:"child_id" binding:"required"`
		CharacterID string `json:"character_id"`
		Notes       string `json:"notes"`
		Rating      *int   `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	review, err := h.progressServ.AddReview(c.Request.Context(), claims.UserID, service.ReviewInput{
		ChildID:     req.ChildID,
		CharacterID: req.CharacterID,
		Notes:       req.Notes,
		Rating:      req.Rating,
	})
	if err != nil {
		h.progressError(c, "create review failed", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func requireChildID(c *gin.Context) (string, bool) {
	childID := strings.TrimSpace(c.Query("child_id"))
	if childID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "child_id parameter is required"})
		return "", false
	}
	return childID, true
}

func (h *AnalyticsHandler) progressError(c *gin.Context, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrChildNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
	case errors.Is(err, service.ErrProgressInvalidInput), errors.Is(err, service.ErrUnknownCharacter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load progress"})
	}
}
