package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/talha309/multiuser-ai-assistant/internal/domain"
	"github.com/talha309/multiuser-ai-assistant/internal/repository"
	"github.com/talha309/multiuser-ai-assistant/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints de hilos y mensajes.
type ChatHandler struct {
	logger   *zap.Logger
	threads  repository.ThreadRepository
	messages repository.MessageRepository
	pipeline *service.ConversationPipeline
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	threads repository.ThreadRepository,
	messages repository.MessageRepository,
	pipeline *service.ConversationPipeline,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		threads:  threads,
		messages: messages,
		pipeline: pipeline,
	}
}

type messageResponse struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type threadResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Messages []messageResponse `json:"messages"`
}

type threadSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StartThread maneja POST /chat/start.
func (h *ChatHandler) StartThread(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	thread := domain.Thread{
		ID:        uuid.NewString(),
		Title:     domain.DefaultThreadTitle,
		OwnerID:   user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.threads.Create(c.Request.Context(), thread); err != nil {
		h.logger.Error("create thread failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}

	c.JSON(http.StatusCreated, threadResponse{
		ID:       thread.ID,
		Title:    thread.Title,
		Messages: []messageResponse{},
	})
}

// SendMessage maneja POST /chat/:threadID/message. Corre el pipeline de
// conversación y devuelve el hilo releído con los mensajes nuevos.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	threadID := c.Param("threadID")
	thread, err := h.threads.GetOwnedBy(c.Request.Context(), user.ID, threadID)
	if err != nil {
		// Hilo ajeno o inexistente responden igual para no filtrar existencia.
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		h.logger.Error("get thread failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}

	if _, err := h.pipeline.Run(c.Request.Context(), thread.ID, user.ID, req.Content); err != nil {
		switch {
		case errors.Is(err, service.ErrPipelineInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrSearchUpstream), errors.Is(err, service.ErrGenerateUpstream):
			h.logger.Error("pipeline upstream failed", zap.Error(err), zap.String("thread_id", thread.ID))
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service failed"})
		default:
			h.logger.Error("pipeline failed", zap.Error(err), zap.String("thread_id", thread.ID))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		}
		return
	}

	resp, err := h.fetchThread(c, thread)
	if err != nil {
		h.logger.Error("refetch thread failed", zap.Error(err), zap.String("thread_id", thread.ID))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListThreads maneja GET /chat/threads.
func (h *ChatHandler) ListThreads(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	threads, err := h.threads.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list threads failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}

	summaries := make([]threadSummary, 0, len(threads))
	for _, t := range threads {
		summaries = append(summaries, threadSummary{ID: t.ID, Title: t.Title})
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ChatHandler) fetchThread(c *gin.Context, thread domain.Thread) (threadResponse, error) {
	messages, err := h.messages.ListByThreadID(c.Request.Context(), thread.ID)
	if err != nil {
		return threadResponse{}, err
	}
	resp := threadResponse{
		ID:       thread.ID,
		Title:    thread.Title,
		Messages: make([]messageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, messageResponse{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return resp, nil
}
