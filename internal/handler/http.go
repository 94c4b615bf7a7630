package handler

import (
	"net/http"

	"soundscape-server/internal/middleware"
	"soundscape-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SoundscapeHandler обслуживает HTTP API анализа текста.
type SoundscapeHandler struct {
	svc          service.SoundscapeService
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewSoundscapeHandler создает обработчик. maxBodyBytes <= 0 - лимит по умолчанию.
func NewSoundscapeHandler(svc service.SoundscapeService, maxBodyBytes int64, logger *zap.Logger) *SoundscapeHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = middleware.DefaultMaxBodyBytes
	}
	return &SoundscapeHandler{
		svc:          svc,
		logger:       logger.Named("SoundscapeHandler"),
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes регистрирует /health и /api/v1. apiMiddlewares применяются только к /api/v1.
func (h *SoundscapeHandler) RegisterRoutes(router *gin.Engine, apiMiddlewares ...gin.HandlerFunc) {
	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	api.Use(apiMiddlewares...)
	api.Use(middleware.MaxBodySize(h.maxBodyBytes))
	{
		api.POST("/scenes/classify", h.classifyScene)
		api.POST("/soundscapes", h.generateSoundscape)
		api.GET("/books/:book_id/chapters/:chapter/pages/:page/soundscape", h.getPageSoundscape)
		api.POST("/triggers", h.findTriggers)
	}
}

func (h *SoundscapeHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SoundscapeHandler) classifyScene(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.svc.ClassifyScene(c.Request.Context(), req.Text, req.Genre)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SoundscapeHandler) generateSoundscape(c *gin.Context) {
	var req SoundscapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.svc.GenerateSoundscape(c.Request.Context(), service.SoundscapeRequest{
		Text:    req.Text,
		BookID:  req.BookID,
		Chapter: req.Chapter,
		Page:    req.Page,
		Genre:   req.Genre,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SoundscapeHandler) getPageSoundscape(c *gin.Context) {
	var uri pageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		handleBindError(c, err)
		return
	}
	bookID, err := uuid.Parse(uri.BookID)
	if err != nil {
		handleBindError(c, err)
		return
	}

	req := service.SoundscapeRequest{BookID: &bookID, Chapter: &uri.Chapter, Page: &uri.Page}
	if genre, ok := c.GetQuery("genre"); ok {
		req.Genre = &genre
	}

	result, err := h.svc.GenerateSoundscape(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SoundscapeHandler) findTriggers(c *gin.Context) {
	var req TriggersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	triggers, err := h.svc.FindTriggers(c.Request.Context(), req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, TriggersResponse{Triggers: triggers})
}
