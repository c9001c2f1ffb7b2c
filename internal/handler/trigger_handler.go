package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vhvplatform/go-webhook-scheduler/internal/service"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

// TriggerHandler exposes a manual tick for operations and testing. The
// periodic ticker performs the same sequence on its own cadence.
type TriggerHandler struct {
	schedules *service.ScheduleEngine
	deferred  *service.DeferredEngine
	log       *logger.Logger
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(schedules *service.ScheduleEngine, deferred *service.DeferredEngine, log *logger.Logger) *TriggerHandler {
	return &TriggerHandler{
		schedules: schedules,
		deferred:  deferred,
		log:       log,
	}
}

// Run processes due recurring schedules and due deferred messages once
func (h *TriggerHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	scheduleResults, err := h.schedules.ProcessDueSchedules(ctx)
	if err != nil {
		h.log.Error("Schedule engine run failed", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Schedule engine run failed", err))
		return
	}

	deferredResults, err := h.deferred.ProcessDuePending(ctx)
	if err != nil {
		h.log.Error("Deferred engine run failed", "error", err)
		c.JSON(http.StatusInternalServerError, errors.NewInternalError("Deferred engine run failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedules": scheduleResults,
		"messages":  deferredResults,
	})
}
