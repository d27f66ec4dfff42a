package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storypals/internal/service"
)

// Handlers agrupa los handlers que el router monta bajo /api.
type Handlers struct {
	User      *UserHandler
	Chat      *ChatHandler
	Catalog   *CatalogHandler
	Child     *ChildHandler
	Analytics *AnalyticsHandler
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(logger *zap.Logger, jwtSvc *service.JWTService, h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", h.User.Register)
	auth.POST("/login", h.User.Login)
	auth.POST("/refresh", h.User.RefreshToken)
	auth.POST("/logout", h.User.Logout)
	auth.POST("/verify", h.User.VerifyToken)

	api.GET("/characters", h.Catalog.ListCharacters)
	api.GET("/stories", h.Catalog.ListStories)
	api.GET("/stories/:id", h.Catalog.GetStory)
	api.POST("/chat/public", h.Chat.PublicMessage)

	protected := api.Group("", JWTAuthMiddleware(jwtSvc))
	protected.GET("/users/me", h.User.Me)
	protected.PUT("/users/me", h.User.UpdateMe)

	protected.GET("/children", h.Child.List)
	protected.POST("/children", h.Child.Create)
	protected.GET("/children/:id", h.Child.Get)
	protected.PUT("/children/:id", h.Child.Update)
	protected.DELETE("/children/:id", h.Child.Delete)

	chat := protected.Group("/chat")
	chat.POST("/message", h.Chat.PostMessage)
	chat.GET("/history", h.Chat.SearchHistory)
	chat.POST("/history", h.Chat.SaveHistory)
	chat.GET("/history/:user_id/:character_id", h.Chat.GetHistory)

	analytics := protected.Group("/analytics")
	analytics.GET("/interactions", h.Analytics.Interactions)
	analytics.GET("/progress", h.Analytics.ChildProgress)
	analytics.POST("/progress", h.Analytics.RecordProgress)
	analytics.GET("/reviews", h.Analytics.ChildReviews)
	analytics.POST("/reviews", h.Analytics.CreateReview)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
