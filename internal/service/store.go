package service

import (
	"context"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The engines depend on narrow store interfaces rather than the concrete
// repositories so tests can substitute in-memory fakes. The repository
// package satisfies all of them.

// TargetStore is the engines' view of webhook target persistence.
type TargetStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.WebhookTarget, error)
	RecordSuccess(ctx context.Context, id primitive.ObjectID, usedAt time.Time) error
	RecordFailure(ctx context.Context, id primitive.ObjectID) error
}

// ScheduleStore is the recurring engine's view of schedule persistence.
type ScheduleStore interface {
	FindDue(ctx context.Context, now time.Time) ([]*domain.RecurringSchedule, error)
	UpdateAfterFiring(ctx context.Context, id primitive.ObjectID, firedAt, nextTriggerAt time.Time) error
	IncrementSuccess(ctx context.Context, id primitive.ObjectID) error
	IncrementFailure(ctx context.Context, id primitive.ObjectID) error
}

// MessageStore is the deferred engine's view of message persistence.
type MessageStore interface {
	Create(ctx context.Context, msg *domain.DeferredMessage) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.DeferredMessage, error)
	FindDuePending(ctx context.Context, now time.Time) ([]*domain.DeferredMessage, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, outcome domain.MessageOutcome, statusCode *int, errMsg string, sentAt time.Time) error
	MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string) error
}

// LogStore appends to the delivery history.
type LogStore interface {
	Append(ctx context.Context, entry *domain.MessageLogEntry) error
}

// Deliverer performs one outbound webhook call.
type Deliverer interface {
	Deliver(ctx context.Context, url string, payload domain.WirePayload) domain.DeliveryResult
}
