package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/repository"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogHandler serves the delivery history
type LogHandler struct {
	logs *repository.LogRepository
	log  *logger.Logger
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs *repository.LogRepository, log *logger.Logger) *LogHandler {
	return &LogHandler{
		logs: logs,
		log:  log,
	}
}

// GetLogs lists delivery log entries for a target, newest first
func (h *LogHandler) GetLogs(c *gin.Context) {
	var req domain.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	targetID, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid target id", err))
		return
	}

	entries, total, err := h.logs.FindByTarget(c.Request.Context(), targetID, req.Page, req.PageSize)
	if err != nil {
		h.log.Error("Failed to list logs", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list logs", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      entries,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}
