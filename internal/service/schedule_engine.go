package service

import (
	"context"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/metrics"
	"github.com/vhvplatform/go-webhook-scheduler/internal/recurrence"
	apperrors "github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
)

// ScheduleEngine fires due recurring schedules. Delivery failures are
// reported per item, never returned as errors; only store failures abort a
// run.
type ScheduleEngine struct {
	schedules ScheduleStore
	targets   TargetStore
	logs      LogStore
	deliverer Deliverer
	log       *logger.Logger
}

// NewScheduleEngine creates a new recurring schedule trigger engine
func NewScheduleEngine(schedules ScheduleStore, targets TargetStore, logs LogStore, deliverer Deliverer, log *logger.Logger) *ScheduleEngine {
	return &ScheduleEngine{
		schedules: schedules,
		targets:   targets,
		logs:      logs,
		deliverer: deliverer,
		log:       log,
	}
}

// ProcessDueSchedules fires every active schedule whose trigger time has
// passed. Each schedule is processed independently and sequentially; a
// schedule keeps recurring even after a failed delivery.
func (e *ScheduleEngine) ProcessDueSchedules(ctx context.Context) ([]domain.FiringResult, error) {
	now := time.Now()

	due, err := e.schedules.FindDue(ctx, now)
	if err != nil {
		return nil, err
	}
	metrics.DueBatchSize.WithLabelValues("schedules").Set(float64(len(due)))

	results := make([]domain.FiringResult, 0, len(due))
	for _, schedule := range due {
		result, err := e.fire(ctx, schedule, now)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

func (e *ScheduleEngine) fire(ctx context.Context, schedule *domain.RecurringSchedule, now time.Time) (domain.FiringResult, error) {
	result := domain.FiringResult{
		ID:   schedule.ID.Hex(),
		Name: schedule.Name,
	}

	target, err := e.targets.FindByID(ctx, schedule.TargetID)
	if err != nil && !apperrors.IsNotFound(err) {
		return result, err
	}

	switch {
	case err != nil:
		result.Error = "target not found"
	case !target.IsActive:
		// The schedule is not disabled; only this firing is skipped.
		result.Error = "target disabled"
	default:
		start := time.Now()
		delivery := e.deliverer.Deliver(ctx, target.URL, BuildPayload(schedule))
		metrics.DeliveryDuration.WithLabelValues("schedule").Observe(time.Since(start).Seconds())

		result.Success = delivery.Success
		result.StatusCode = delivery.StatusCode
		result.Error = delivery.Error

		if delivery.Success {
			metrics.Deliveries.WithLabelValues("schedule", "success").Inc()
			if err := e.targets.RecordSuccess(ctx, target.ID, now); err != nil {
				return result, err
			}
		} else {
			metrics.Deliveries.WithLabelValues("schedule", "failure").Inc()
			if err := e.targets.RecordFailure(ctx, target.ID); err != nil {
				return result, err
			}
		}
	}

	if result.Success {
		if err := e.schedules.IncrementSuccess(ctx, schedule.ID); err != nil {
			return result, err
		}
	} else {
		if err := e.schedules.IncrementFailure(ctx, schedule.ID); err != nil {
			return result, err
		}
	}

	// Recurrence continues regardless of delivery outcome: no backoff, no
	// pause on failure.
	if vErr := schedule.Recurrence.Validate(); vErr != nil {
		e.log.Warn("Malformed recurrence rule, using fallback interval",
			"schedule_id", schedule.ID.Hex(), "error", vErr)
	}
	next := recurrence.Next(schedule.Recurrence, now)
	if err := e.schedules.UpdateAfterFiring(ctx, schedule.ID, now, next); err != nil {
		return result, err
	}

	entry := &domain.MessageLogEntry{
		TargetID:   schedule.TargetID,
		Source:     domain.LogSourceSchedule,
		SourceID:   schedule.ID,
		Content:    schedule.Body,
		Success:    result.Success,
		StatusCode: result.StatusCode,
		Error:      result.Error,
	}
	if err := e.logs.Append(ctx, entry); err != nil {
		return result, err
	}

	if result.Success {
		e.log.Info("Fired recurring schedule", "schedule_id", schedule.ID.Hex(), "name", schedule.Name, "next_trigger_at", next)
	} else {
		e.log.Warn("Recurring schedule firing failed", "schedule_id", schedule.ID.Hex(), "name", schedule.Name, "error", result.Error, "next_trigger_at", next)
	}

	return result, nil
}
