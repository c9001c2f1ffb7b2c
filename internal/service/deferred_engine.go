package service

import (
	"context"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/metrics"
	apperrors "github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeferredEngine manages one-off scheduled sends: creation, cancellation,
// and firing of due pending messages.
type DeferredEngine struct {
	messages  MessageStore
	targets   TargetStore
	logs      LogStore
	deliverer Deliverer
	log       *logger.Logger
}

// NewDeferredEngine creates a new deferred send engine
func NewDeferredEngine(messages MessageStore, targets TargetStore, logs LogStore, deliverer Deliverer, log *logger.Logger) *DeferredEngine {
	return &DeferredEngine{
		messages:  messages,
		targets:   targets,
		logs:      logs,
		deliverer: deliverer,
		log:       log,
	}
}

// CreateDeferred validates and creates a pending one-off message. The
// scheduled time must be in the future and the target must exist and be
// active.
func (e *DeferredEngine) CreateDeferred(ctx context.Context, req *domain.CreateDeferredRequest) (*domain.DeferredMessage, error) {
	if !req.ScheduledFor.After(time.Now()) {
		return nil, apperrors.NewValidationError("scheduled_for must be in the future", nil)
	}

	targetID, err := primitive.ObjectIDFromHex(req.TargetID)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid target id", err)
	}

	target, err := e.targets.FindByID(ctx, targetID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, apperrors.NewInternalError("failed to load webhook target", err)
	}
	if !target.IsActive {
		return nil, apperrors.NewValidationError("webhook target is disabled", nil)
	}

	msg := &domain.DeferredMessage{
		TargetID:     targetID,
		Content:      req.Content,
		Status:       domain.MessageStatusPending,
		ScheduledFor: req.ScheduledFor,
	}
	if err := e.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	e.log.Info("Created deferred message", "message_id", msg.ID.Hex(), "scheduled_for", msg.ScheduledFor)
	return msg, nil
}

// Cancel transitions a pending message to cancelled. Sent and cancelled are
// terminal, each rejected with its own error.
func (e *DeferredEngine) Cancel(ctx context.Context, id string) (*domain.DeferredMessage, error) {
	msgID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid message id", err)
	}

	msg, err := e.messages.FindByID(ctx, msgID)
	if err != nil {
		return nil, err
	}

	if msg.ScheduledFor.IsZero() {
		return nil, apperrors.NewValidationError("message is not a scheduled message", nil)
	}

	switch msg.Status {
	case domain.MessageStatusSent:
		return nil, apperrors.NewConflictError("message has already been sent", nil)
	case domain.MessageStatusCancelled:
		return nil, apperrors.NewConflictError("message is already cancelled", nil)
	}

	if err := e.messages.MarkCancelled(ctx, msgID, ""); err != nil {
		return nil, err
	}
	metrics.MessagesCancelled.WithLabelValues("user").Inc()

	msg.Status = domain.MessageStatusCancelled
	e.log.Info("Cancelled deferred message", "message_id", msg.ID.Hex())
	return msg, nil
}

// ProcessDuePending fires every pending message whose scheduled time has
// passed, earliest first. A firing is consumed whether or not delivery
// succeeds; a message whose target went inactive is cancelled outright since
// a one-off has no next cycle. State is persisted eagerly per item.
func (e *DeferredEngine) ProcessDuePending(ctx context.Context) ([]domain.FiringResult, error) {
	now := time.Now()

	due, err := e.messages.FindDuePending(ctx, now)
	if err != nil {
		return nil, err
	}
	metrics.DueBatchSize.WithLabelValues("deferred").Set(float64(len(due)))

	results := make([]domain.FiringResult, 0, len(due))
	for _, msg := range due {
		result, err := e.fire(ctx, msg, now)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

func (e *DeferredEngine) fire(ctx context.Context, msg *domain.DeferredMessage, now time.Time) (domain.FiringResult, error) {
	result := domain.FiringResult{ID: msg.ID.Hex()}

	target, err := e.targets.FindByID(ctx, msg.TargetID)
	if err != nil && !apperrors.IsNotFound(err) {
		return result, err
	}

	if err != nil || !target.IsActive {
		reason := "target disabled, message cancelled"
		if err := e.messages.MarkCancelled(ctx, msg.ID, reason); err != nil {
			return result, err
		}
		metrics.MessagesCancelled.WithLabelValues("target_disabled").Inc()
		result.Error = reason
		e.log.Warn("Cancelled due message with disabled target", "message_id", msg.ID.Hex(), "target_id", msg.TargetID.Hex())
		return result, nil
	}

	start := time.Now()
	delivery := e.deliverer.Deliver(ctx, target.URL, domain.WirePayload{Content: msg.Content})
	metrics.DeliveryDuration.WithLabelValues("deferred").Observe(time.Since(start).Seconds())

	result.Success = delivery.Success
	result.StatusCode = delivery.StatusCode
	result.Error = delivery.Error

	outcome := domain.MessageOutcomeFailed
	if delivery.Success {
		outcome = domain.MessageOutcomeSuccess
	}
	if err := e.messages.MarkSent(ctx, msg.ID, outcome, delivery.StatusCode, delivery.Error, now); err != nil {
		return result, err
	}

	if delivery.Success {
		metrics.Deliveries.WithLabelValues("deferred", "success").Inc()
		if err := e.targets.RecordSuccess(ctx, target.ID, now); err != nil {
			return result, err
		}
	} else {
		metrics.Deliveries.WithLabelValues("deferred", "failure").Inc()
		if err := e.targets.RecordFailure(ctx, target.ID); err != nil {
			return result, err
		}
	}

	entry := &domain.MessageLogEntry{
		TargetID:   msg.TargetID,
		Source:     domain.LogSourceDeferred,
		SourceID:   msg.ID,
		Content:    msg.Content,
		Success:    result.Success,
		StatusCode: result.StatusCode,
		Error:      result.Error,
	}
	if err := e.logs.Append(ctx, entry); err != nil {
		return result, err
	}

	if result.Success {
		e.log.Info("Sent deferred message", "message_id", msg.ID.Hex())
	} else {
		e.log.Warn("Deferred message delivery failed", "message_id", msg.ID.Hex(), "error", result.Error)
	}

	return result, nil
}
