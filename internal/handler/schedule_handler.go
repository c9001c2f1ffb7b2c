package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/recurrence"
	"github.com/vhvplatform/go-webhook-scheduler/internal/repository"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler handles HTTP requests for recurring schedules
type ScheduleHandler struct {
	schedules *repository.ScheduleRepository
	targets   *repository.TargetRepository
	log       *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedules *repository.ScheduleRepository, targets *repository.TargetRepository, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		targets:   targets,
		log:       log,
	}
}

// CreateSchedule creates a new recurring schedule with an immediately
// computed next trigger time
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req domain.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}

	if err := req.Recurrence.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid recurrence", err))
		return
	}

	targetID, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid target id", err))
		return
	}
	if _, err := h.targets.FindByID(c.Request.Context(), targetID); err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load target", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load target", err))
		return
	}

	next := recurrence.Next(req.Recurrence, time.Now())
	schedule := &domain.RecurringSchedule{
		TargetID:      targetID,
		Name:          req.Name,
		Body:          req.Body,
		Embed:         req.Embed,
		ImageURL:      req.ImageURL,
		IsActive:      true,
		Recurrence:    req.Recurrence,
		NextTriggerAt: &next,
	}

	if err := h.schedules.Create(c.Request.Context(), schedule); err != nil {
		h.log.Error("Failed to create schedule", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to create schedule", err))
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

// GetSchedules lists recurring schedules with pagination
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	schedules, total, err := h.schedules.FindAll(c.Request.Context(), page, pageSize)
	if err != nil {
		h.log.Error("Failed to list schedules", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to list schedules", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      schedules,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetSchedule retrieves a single recurring schedule by ID
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	schedule, err := h.schedules.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load schedule", err))
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// UpdateSchedule updates a recurring schedule. A recurrence change or a
// reactivation recomputes the next trigger time.
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var req domain.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid request", err))
		return
	}
	if req.Recurrence != nil {
		if err := req.Recurrence.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid recurrence", err))
			return
		}
	}

	schedule, err := h.schedules.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load schedule", err))
		return
	}

	reactivated := req.IsActive != nil && *req.IsActive && !schedule.IsActive

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.Body != nil {
		schedule.Body = *req.Body
	}
	if req.Embed != nil {
		schedule.Embed = req.Embed
	}
	if req.ImageURL != nil {
		schedule.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if req.Recurrence != nil {
		schedule.Recurrence = *req.Recurrence
	}

	if req.Recurrence != nil || reactivated {
		next := recurrence.Next(schedule.Recurrence, time.Now())
		schedule.NextTriggerAt = &next
	}

	if err := h.schedules.Update(c.Request.Context(), schedule); err != nil {
		h.log.Error("Failed to update schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to update schedule", err))
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// EnableSchedule reactivates a schedule and recomputes its next trigger time
func (h *ScheduleHandler) EnableSchedule(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	schedule, err := h.schedules.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load schedule", err))
		return
	}

	// An active schedule always carries a fresh next trigger time.
	next := recurrence.Next(schedule.Recurrence, time.Now())
	schedule.IsActive = true
	schedule.NextTriggerAt = &next

	if err := h.schedules.Update(c.Request.Context(), schedule); err != nil {
		h.log.Error("Failed to enable schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to enable schedule", err))
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// DisableSchedule deactivates a schedule; its next trigger value goes stale
// and is ignored until reactivation
func (h *ScheduleHandler) DisableSchedule(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	schedule, err := h.schedules.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, err)
			return
		}
		h.log.Error("Failed to load schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to load schedule", err))
		return
	}

	schedule.IsActive = false
	if err := h.schedules.Update(c.Request.Context(), schedule); err != nil {
		h.log.Error("Failed to disable schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to disable schedule", err))
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule removes a recurring schedule
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete schedule", "error", err, "id", id.Hex())
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Failed to delete schedule", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

func parseObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.NewValidationError("Invalid id", err))
		return primitive.NilObjectID, false
	}
	return id, true
}
