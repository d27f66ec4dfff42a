package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storypals/internal/service"
)

// ChildHandler expone los perfiles infantiles del padre autenticado.
type ChildHandler struct {
	logger    *zap.Logger
	childServ *service.ChildService
}

func NewChildHandler(logger *zap.Logger, childServ *service.ChildService) *ChildHandler {
	return &ChildHandler{logger: logger, childServ: childServ}
}

// Create maneja POST /children.
func (h *ChildHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		Name         string   `json:"name" binding:"required"`
		Age          int      `json:"age" binding:"required"`
		Interests    []string `json:"interests"`
		ReadingLevel string   `json:"reading_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create child request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	child, err := h.childServ.Create(c.Request.Context(), claims.UserID, service.CreateChildInput{
		Name:         req.Name,
		Age:          req.Age,
		Interests:    req.Interests,
		ReadingLevel: req.ReadingLevel,
	})
	if err != nil {
		if errors.Is(err, service.ErrChildInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and age must be between 3 and 12"})
			return
		}
		h.logger.Error("create child failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create child"})
		return
	}
	c.JSON(http.StatusCreated, child)
}

// List maneja GET /children.
func (h *ChildHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	children, err := h.childServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list children failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list children"})
		return
	}
	c.JSON(http.StatusOK, children)
}

// Get maneja GET /children/:id.
func (h *ChildHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	child, err := h.childServ.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrChildNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		h.logger.Error("get child failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load child"})
		return
	}
	c.JSON(http.StatusOK, child)
}

// Update maneja PUT /children/:id. Los campos ausentes no cambian.
func (h *ChildHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req struct {
		Name         *string  `json:"name"`
		Age          *int     `json:"age"`
		Interests    []string `json:"interests"`
		ReadingLevel *string  `json:"reading_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update child request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	child, err := h.childServ.Update(c.Request.Context(), claims.UserID, c.Param("id"), service.UpdateChildInput{
		Name:         req.Name,
		Age:          req.Age,
		Interests:    req.Interests,
		ReadingLevel: req.ReadingLevel,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChildNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
		case errors.Is(err, service.ErrChildInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and age must be between 3 and 12"})
		default:
			h.logger.Error("update child failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update child"})
		}
		return
	}
	c.JSON(http.StatusOK, child)
}

// Delete maneja DELETE /children/:id.
func (h *ChildHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.childServ.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrChildNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}
		h.logger.Error("delete child failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete child"})
		return
	}
	c.Status(http.StatusNoContent)
}
