package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/repository"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

// TargetHandler handles HTTP requests for webhook targets
type TargetHandler struct {
	targets   *repository.TargetRepository
	schedules *repository.ScheduleRepository
	log       *logger.Logger
}

// NewTargetHandler creates a new target handler
func NewTargetHandler(targets *repository.TargetRepository, schedules *repository.ScheduleRepository, log *logger.Logger) *TargetHandler {
	return &TargetHandler{
		targets:   targets,
		schedules: schedules,
		log:       log,
	}
}

// CreateTarget registers a new webhook target
func (h *TargetHandler) CreateTarget(c *gin.Context) {
	var req domain.CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	target := &domain.WebhookTarget{
		Name:     req.Name,
		URL:      req.URL,
		IsActive: true,
	}
	if err := h.targets.Create(c.Request.Context(), target); err != nil {
		h.log.Error("Failed to create target", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to create target", err))
		return
	}

	c.JSON(http.StatusCreated, target)
}

// GetTargets lists all webhook targets
func (h *TargetHandler) GetTargets(c *gin.Context) {
	targets, err := h.targets.FindAll(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list targets", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list targets", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": targets})
}

// GetTarget retrieves a single webhook target by ID
func (h *TargetHandler) GetTarget(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	target, err := h.targets.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondFindError(c, err, "target")
		return
	}

	c.JSON(http.StatusOK, target)
}

// UpdateTarget updates a webhook target
func (h *TargetHandler) UpdateTarget(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req domain.UpdateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	target, err := h.targets.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondFindError(c, err, "target")
		return
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.URL != nil {
		target.URL = *req.URL
	}
	if req.IsActive != nil {
		target.IsActive = *req.IsActive
	}

	if err := h.targets.Update(c.Request.Context(), target); err != nil {
		h.log.Error("Failed to update target", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update target", err))
		return
	}

	c.JSON(http.StatusOK, target)
}

// DeleteTarget removes a webhook target. Deletion is refused while recurring
// schedules still reference the target.
func (h *TargetHandler) DeleteTarget(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	count, err := h.schedules.CountByTarget(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to count schedules for target", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to delete target", err))
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, errors.NewConflictError("Target still has schedules attached", nil))
		return
	}

	if err := h.targets.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete target", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to delete target", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Target deleted successfully"})
}

// EnableTarget re-enables a webhook target
func (h *TargetHandler) EnableTarget(c *gin.Context) {
	h.setActive(c, true)
}

// DisableTarget disables a webhook target
func (h *TargetHandler) DisableTarget(c *gin.Context) {
	h.setActive(c, false)
}

func (h *TargetHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	if _, err := h.targets.FindByID(c.Request.Context(), id); err != nil {
		h.respondFindError(c, err, "target")
		return
	}

	if err := h.targets.SetActive(c.Request.Context(), id, active); err != nil {
		h.log.Error("Failed to update target active flag", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update target", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Target updated successfully", "is_active": active})
}

func (h *TargetHandler) respondFindError(c *gin.Context, err error, what string) {
	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, err)
		return
	}
	h.log.Error("Failed to load "+what, "error", err)
	c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load "+what, err))
}
