package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storypals/internal/domain"
	"storypals/internal/repository"
)

// CatalogHandler expone personajes e historias.
type CatalogHandler struct {
	logger  *zap.Logger
	stories repository.StoryRepository
}

func NewCatalogHandler(logger *zap.Logger, stories repository.StoryRepository) *CatalogHandler {
	return &CatalogHandler{logger: logger, stories: stories}
}

// ListCharacters maneja GET /characters.
func (h *CatalogHandler) ListCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Characters)
}

// ListStories maneja GET /stories?character=&category=.
func (h *CatalogHandler) ListStories(c *gin.Context) {
	stories, err := h.stories.List(c.Request.Context(), repository.StoryFilter{
		CharacterID: c.Query("character"),
		Category:    c.Query("category"),
	})
	if err != nil {
		h.logger.Error("list stories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list stories"})
		return
	}
	c.JSON(http.StatusOK, stories)
}

// GetStory maneja GET /stories/:id.
func (h *CatalogHandler) GetStory(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	}
	story, err := h.stories.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		h.logger.Error("get story failed", zap.String("story_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load story"})
		return
	}
	c.JSON(http.StatusOK, story)
}
