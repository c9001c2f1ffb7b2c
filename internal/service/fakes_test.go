package service

import (
	"context"
	"errors"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	apperrors "github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes. They mimic the field-level update semantics of the
// Mongo repositories closely enough for engine behavior tests.

type fakeTargetStore struct {
	targets map[primitive.ObjectID]*domain.WebhookTarget
	failAll bool
}

func newFakeTargetStore(targets ...*domain.WebhookTarget) *fakeTargetStore {
	s := &fakeTargetStore{targets: make(map[primitive.ObjectID]*domain.WebhookTarget)}
	for _, t := range targets {
		s.targets[t.ID] = t
	}
	return s
}

func (s *fakeTargetStore) FindByID(_ context.Context, id primitive.ObjectID) (*domain.WebhookTarget, error) {
	if s.failAll {
		return nil, errors.New("store unavailable")
	}
	t, ok := s.targets[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("webhook target not found", nil)
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTargetStore) RecordSuccess(_ context.Context, id primitive.ObjectID, usedAt time.Time) error {
	if t, ok := s.targets[id]; ok {
		t.SuccessCount++
		at := usedAt
		t.LastUsedAt = &at
	}
	return nil
}

func (s *fakeTargetStore) RecordFailure(_ context.Context, id primitive.ObjectID) error {
	if t, ok := s.targets[id]; ok {
		t.FailureCount++
	}
	return nil
}

type fakeScheduleStore struct {
	schedules map[primitive.ObjectID]*domain.RecurringSchedule
	dueOrder  []primitive.ObjectID
}

func newFakeScheduleStore(schedules ...*domain.RecurringSchedule) *fakeScheduleStore {
	s := &fakeScheduleStore{schedules: make(map[primitive.ObjectID]*domain.RecurringSchedule)}
	for _, sched := range schedules {
		s.schedules[sched.ID] = sched
		s.dueOrder = append(s.dueOrder, sched.ID)
	}
	return s
}

func (s *fakeScheduleStore) FindDue(_ context.Context, now time.Time) ([]*domain.RecurringSchedule, error) {
	var due []*domain.RecurringSchedule
	for _, id := range s.dueOrder {
		sched := s.schedules[id]
		if sched.IsActive && sched.NextTriggerAt != nil && !sched.NextTriggerAt.After(now) {
			copied := *sched
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (s *fakeScheduleStore) UpdateAfterFiring(_ context.Context, id primitive.ObjectID, firedAt, nextTriggerAt time.Time) error {
	if sched, ok := s.schedules[id]; ok {
		fired, next := firedAt, nextTriggerAt
		sched.LastTriggeredAt = &fired
		sched.NextTriggerAt = &next
	}
	return nil
}

func (s *fakeScheduleStore) IncrementSuccess(_ context.Context, id primitive.ObjectID) error {
	if sched, ok := s.schedules[id]; ok {
		sched.SuccessCount++
	}
	return nil
}

func (s *fakeScheduleStore) IncrementFailure(_ context.Context, id primitive.ObjectID) error {
	if sched, ok := s.schedules[id]; ok {
		sched.FailureCount++
	}
	return nil
}

type fakeMessageStore struct {
	messages map[primitive.ObjectID]*domain.DeferredMessage
	order    []primitive.ObjectID
}

func newFakeMessageStore(messages ...*domain.DeferredMessage) *fakeMessageStore {
	s := &fakeMessageStore{messages: make(map[primitive.ObjectID]*domain.DeferredMessage)}
	for _, m := range messages {
		s.messages[m.ID] = m
		s.order = append(s.order, m.ID)
	}
	return s
}

func (s *fakeMessageStore) Create(_ context.Context, msg *domain.DeferredMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()
	s.messages[msg.ID] = msg
	s.order = append(s.order, msg.ID)
	return nil
}

func (s *fakeMessageStore) FindByID(_ context.Context, id primitive.ObjectID) (*domain.DeferredMessage, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("message not found", nil)
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMessageStore) FindDuePending(_ context.Context, now time.Time) ([]*domain.DeferredMessage, error) {
	var due []*domain.DeferredMessage
	for _, id := range s.order {
		m := s.messages[id]
		if m.Status == domain.MessageStatusPending && !m.ScheduledFor.After(now) {
			copied := *m
			due = append(due, &copied)
		}
	}
	// Insertion order in tests already matches scheduled_for/created_at sort.
	return due, nil
}

func (s *fakeMessageStore) MarkSent(_ context.Context, id primitive.ObjectID, outcome domain.MessageOutcome, statusCode *int, errMsg string, sentAt time.Time) error {
	m, ok := s.messages[id]
	if !ok {
		return errors.New("message not found")
	}
	m.Status = domain.MessageStatusSent
	m.Outcome = outcome
	m.StatusCode = statusCode
	m.Error = errMsg
	at := sentAt
	m.SentAt = &at
	return nil
}

func (s *fakeMessageStore) MarkCancelled(_ context.Context, id primitive.ObjectID, reason string) error {
	m, ok := s.messages[id]
	if !ok {
		return errors.New("message not found")
	}
	m.Status = domain.MessageStatusCancelled
	if reason != "" {
		m.Error = reason
	}
	return nil
}

type fakeLogStore struct {
	entries []*domain.MessageLogEntry
}

func (s *fakeLogStore) Append(_ context.Context, entry *domain.MessageLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

// stubDeliverer returns canned results keyed by URL, recording every call.
type stubDeliverer struct {
	results map[string]domain.DeliveryResult
	calls   []string
}

func (d *stubDeliverer) Deliver(_ context.Context, url string, _ domain.WirePayload) domain.DeliveryResult {
	d.calls = append(d.calls, url)
	if res, ok := d.results[url]; ok {
		return res
	}
	code := 204
	return domain.DeliveryResult{Success: true, StatusCode: &code}
}

func intPtr(v int) *int { return &v }
