package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	apperrors "github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newDeferredEngine(messages *fakeMessageStore, targets *fakeTargetStore, deliverer Deliverer) (*DeferredEngine, *fakeLogStore) {
	logs := &fakeLogStore{}
	return NewDeferredEngine(messages, targets, logs, deliverer, logger.NewLogger()), logs
}

func pendingMessage(target *domain.WebhookTarget, scheduledFor time.Time) *domain.DeferredMessage {
	return &domain.DeferredMessage{
		ID:           primitive.NewObjectID(),
		TargetID:     target.ID,
		Content:      "deferred content",
		Status:       domain.MessageStatusPending,
		ScheduledFor: scheduledFor,
		CreatedAt:    time.Now().Add(-time.Hour),
	}
}

func TestCreateDeferred_Validation(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	disabled := activeTarget("https://discord.test/off")
	disabled.IsActive = false

	targets := newFakeTargetStore(target, disabled)
	messages := newFakeMessageStore()
	engine, _ := newDeferredEngine(messages, targets, &stubDeliverer{})
	ctx := context.Background()

	tests := []struct {
		name     string
		req      domain.CreateDeferredRequest
		wantCode string
	}{
		{
			name:     "scheduled in the past",
			req:      domain.CreateDeferredRequest{TargetID: target.ID.Hex(), Content: "x", ScheduledFor: time.Now().Add(-time.Minute)},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "malformed target id",
			req:      domain.CreateDeferredRequest{TargetID: "not-an-id", Content: "x", ScheduledFor: time.Now().Add(time.Hour)},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "target not found",
			req:      domain.CreateDeferredRequest{TargetID: primitive.NewObjectID().Hex(), Content: "x", ScheduledFor: time.Now().Add(time.Hour)},
			wantCode: "NOT_FOUND",
		},
		{
			name:     "target disabled",
			req:      domain.CreateDeferredRequest{TargetID: disabled.ID.Hex(), Content: "x", ScheduledFor: time.Now().Add(time.Hour)},
			wantCode: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateDeferred(ctx, &tt.req)
			require.Error(t, err)
			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Empty(t, messages.messages, "nothing may be created on rejection")
		})
	}
}

func TestCreateDeferred_Success(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore()
	engine, _ := newDeferredEngine(messages, targets, &stubDeliverer{})

	scheduledFor := time.Now().Add(2 * time.Hour)
	msg, err := engine.CreateDeferred(context.Background(), &domain.CreateDeferredRequest{
		TargetID:     target.ID.Hex(),
		Content:      "see you later",
		ScheduledFor: scheduledFor,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MessageStatusPending, msg.Status)
	assert.Equal(t, "see you later", msg.Content)
	assert.Equal(t, scheduledFor, msg.ScheduledFor)
	assert.False(t, msg.ID.IsZero())
}

func TestCancel_StateMachine(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	future := time.Now().Add(time.Hour)

	pending := pendingMessage(target, future)
	sent := pendingMessage(target, future)
	sent.Status = domain.MessageStatusSent
	cancelled := pendingMessage(target, future)
	cancelled.Status = domain.MessageStatusCancelled
	unscheduled := pendingMessage(target, time.Time{})

	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore(pending, sent, cancelled, unscheduled)
	engine, _ := newDeferredEngine(messages, targets, &stubDeliverer{})
	ctx := context.Background()

	// Pending cancels cleanly.
	got, err := engine.Cancel(ctx, pending.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusCancelled, got.Status)
	assert.Equal(t, domain.MessageStatusCancelled, messages.messages[pending.ID].Status)

	// Terminal states each reject with their own error.
	_, err = engine.Cancel(ctx, sent.ID.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already been sent")

	_, err = engine.Cancel(ctx, cancelled.ID.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already cancelled")

	// A message with no scheduled time is not a deferred send.
	_, err = engine.Cancel(ctx, unscheduled.ID.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a scheduled message")

	// Unknown id.
	_, err = engine.Cancel(ctx, primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProcessDuePending_FailedDeliveryStillConsumesFiring(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	msg := pendingMessage(target, time.Now().Add(-time.Minute))

	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore(msg)
	deliverer := &stubDeliverer{results: map[string]domain.DeliveryResult{
		target.URL: {Success: false, StatusCode: intPtr(400), Error: "Cannot send an empty message"},
	}}
	engine, logs := newDeferredEngine(messages, targets, deliverer)

	results, err := engine.ProcessDuePending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	require.NotNil(t, results[0].StatusCode)
	assert.Equal(t, 400, *results[0].StatusCode)

	// A failed one-off is not retried: the message is Sent with a failed
	// outcome.
	stored := messages.messages[msg.ID]
	assert.Equal(t, domain.MessageStatusSent, stored.Status)
	assert.Equal(t, domain.MessageOutcomeFailed, stored.Outcome)
	assert.Equal(t, "Cannot send an empty message", stored.Error)
	require.NotNil(t, stored.SentAt)

	assert.Equal(t, int64(1), targets.targets[target.ID].FailureCount)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, domain.LogSourceDeferred, logs.entries[0].Source)
}

func TestProcessDuePending_SuccessfulSend(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	msg := pendingMessage(target, time.Now().Add(-time.Minute))

	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore(msg)
	engine, _ := newDeferredEngine(messages, targets, &stubDeliverer{})

	results, err := engine.ProcessDuePending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	stored := messages.messages[msg.ID]
	assert.Equal(t, domain.MessageStatusSent, stored.Status)
	assert.Equal(t, domain.MessageOutcomeSuccess, stored.Outcome)
	assert.Equal(t, int64(1), targets.targets[target.ID].SuccessCount)
	require.NotNil(t, targets.targets[target.ID].LastUsedAt)
}

func TestProcessDuePending_DisabledTargetCancelsOutright(t *testing.T) {
	target := activeTarget("https://discord.test/hook")
	target.IsActive = false
	msg := pendingMessage(target, time.Now().Add(-time.Minute))

	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore(msg)
	deliverer := &stubDeliverer{}
	engine, _ := newDeferredEngine(messages, targets, deliverer)

	results, err := engine.ProcessDuePending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, "target disabled, message cancelled", results[0].Error)
	assert.Empty(t, deliverer.calls, "no delivery may be attempted")

	// Terminal: the one-off is abandoned, not retried next cycle.
	stored := messages.messages[msg.ID]
	assert.Equal(t, domain.MessageStatusCancelled, stored.Status)
	assert.Equal(t, "target disabled, message cancelled", stored.Error)
}

func TestProcessDuePending_OnlyDuePendingFire(t *testing.T) {
	target := activeTarget("https://discord.test/hook")

	due := pendingMessage(target, time.Now().Add(-time.Minute))
	future := pendingMessage(target, time.Now().Add(time.Hour))
	alreadySent := pendingMessage(target, time.Now().Add(-time.Hour))
	alreadySent.Status = domain.MessageStatusSent

	targets := newFakeTargetStore(target)
	messages := newFakeMessageStore(due, future, alreadySent)
	deliverer := &stubDeliverer{}
	engine, _ := newDeferredEngine(messages, targets, deliverer)

	results, err := engine.ProcessDuePending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, due.ID.Hex(), results[0].ID)
	assert.Len(t, deliverer.calls, 1)

	assert.Equal(t, domain.MessageStatusPending, messages.messages[future.ID].Status)
}

func TestProcessDuePending_FiresInScheduledOrder(t *testing.T) {
	early := activeTarget("https://discord.test/early")
	late := activeTarget("https://discord.test/late")

	first := pendingMessage(early, time.Now().Add(-2*time.Hour))
	second := pendingMessage(late, time.Now().Add(-time.Hour))

	targets := newFakeTargetStore(early, late)
	messages := newFakeMessageStore(first, second)
	deliverer := &stubDeliverer{}
	engine, _ := newDeferredEngine(messages, targets, deliverer)

	results, err := engine.ProcessDuePending(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{early.URL, late.URL}, deliverer.calls)
}
