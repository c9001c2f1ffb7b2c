package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/repository"
	"github.com/vhvplatform/go-webhook-scheduler/internal/service"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

// MessageHandler handles HTTP requests for deferred messages
type MessageHandler struct {
	engine   *service.DeferredEngine
	messages *repository.MessageRepository
	log      *logger.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(engine *service.DeferredEngine, messages *repository.MessageRepository, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		engine:   engine,
		messages: messages,
		log:      log,
	}
}

// CreateMessage schedules a one-off message
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req domain.CreateDeferredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	msg, err := h.engine.CreateDeferred(c.Request.Context(), &req)
	if err != nil {
		h.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessages lists deferred messages with pagination
func (h *MessageHandler) GetMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	messages, total, err := h.messages.FindAll(c.Request.Context(), page, pageSize)
	if err != nil {
		h.log.Error("Failed to list messages", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list messages", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      messages,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetMessage retrieves a single deferred message by ID
func (h *MessageHandler) GetMessage(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	msg, err := h.messages.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load message", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load message", err))
		return
	}

	c.JSON(http.StatusOK, msg)
}

// CancelMessage cancels a pending deferred message
func (h *MessageHandler) CancelMessage(c *gin.Context) {
	msg, err := h.engine.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) respondEngineError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		h.log.Error("Deferred message operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Operation failed", err))
		return
	}

	switch appErr.Code {
	case "VALIDATION_ERROR":
		c.JSON(http.StatusBadRequest, appErr)
	case "NOT_FOUND":
		c.JSON(http.StatusNotFound, appErr)
	case "CONFLICT":
		c.JSON(http.StatusConflict, appErr)
	default:
		h.log.Error("Deferred message operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, appErr)
	}
}
