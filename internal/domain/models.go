package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookTarget represents a Discord webhook endpoint that messages are
// delivered to. Counters and LastUsedAt are mutated by every delivery attempt.
type WebhookTarget struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	URL          string             `json:"url" bson:"url"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	SuccessCount int64              `json:"success_count" bson:"success_count"`
	FailureCount int64              `json:"failure_count" bson:"failure_count"`
	LastUsedAt   *time.Time         `json:"last_used_at,omitempty" bson:"last_used_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// RecurringSchedule is a message definition that fires repeatedly according
// to its recurrence rule. While active, NextTriggerAt is always non-nil.
type RecurringSchedule struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TargetID        primitive.ObjectID `json:"target_id" bson:"target_id"`
	Name            string             `json:"name" bson:"name"`
	Body            string             `json:"body,omitempty" bson:"body,omitempty"`
	Embed           *Embed             `json:"embed,omitempty" bson:"embed,omitempty"`
	ImageURL        string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	IsActive        bool               `json:"is_active" bson:"is_active"`
	Recurrence      Recurrence         `json:"recurrence" bson:"recurrence"`
	LastTriggeredAt *time.Time         `json:"last_triggered_at,omitempty" bson:"last_triggered_at,omitempty"`
	NextTriggerAt   *time.Time         `json:"next_trigger_at,omitempty" bson:"next_trigger_at,omitempty"`
	SuccessCount    int64              `json:"success_count" bson:"success_count"`
	FailureCount    int64              `json:"failure_count" bson:"failure_count"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// MessageStatus represents the delivery lifecycle of a deferred message.
// Sent and cancelled are terminal states.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusCancelled MessageStatus = "cancelled"
)

// MessageOutcome records how a consumed firing went.
type MessageOutcome string

const (
	MessageOutcomeSuccess MessageOutcome = "success"
	MessageOutcomeFailed  MessageOutcome = "failed"
)

// DeferredMessage is a one-off message scheduled for a single future delivery.
type DeferredMessage struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TargetID     primitive.ObjectID `json:"target_id" bson:"target_id"`
	Content      string             `json:"content" bson:"content"`
	Status       MessageStatus      `json:"status" bson:"status"`
	ScheduledFor time.Time          `json:"scheduled_for" bson:"scheduled_for"`
	SentAt       *time.Time         `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	Outcome      MessageOutcome     `json:"outcome,omitempty" bson:"outcome,omitempty"`
	StatusCode   *int               `json:"status_code,omitempty" bson:"status_code,omitempty"`
	Error        string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// LogSource identifies which engine produced a log entry.
type LogSource string

const (
	LogSourceSchedule LogSource = "schedule"
	LogSourceDeferred LogSource = "deferred"
)

// MessageLogEntry is an append-only record of one delivery attempt. It is
// never updated after creation.
type MessageLogEntry struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TargetID   primitive.ObjectID `json:"target_id" bson:"target_id"`
	Source     LogSource          `json:"source" bson:"source"`
	SourceID   primitive.ObjectID `json:"source_id" bson:"source_id"`
	Content    string             `json:"content,omitempty" bson:"content,omitempty"`
	Success    bool               `json:"success" bson:"success"`
	StatusCode *int               `json:"status_code,omitempty" bson:"status_code,omitempty"`
	Error      string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// Embed is a structured message block in the Discord embed shape. The
// trigger engines treat it as an opaque payload fragment.
type Embed struct {
	Title       string       `json:"title,omitempty" bson:"title,omitempty"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Color       int          `json:"color,omitempty" bson:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty" bson:"fields,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty" bson:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty" bson:"footer,omitempty"`
}

// EmbedField is a name/value pair inside an embed.
type EmbedField struct {
	Name   string `json:"name" bson:"name"`
	Value  string `json:"value" bson:"value"`
	Inline bool   `json:"inline,omitempty" bson:"inline,omitempty"`
}

// EmbedImage references an image by URL.
type EmbedImage struct {
	URL string `json:"url" bson:"url"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text" bson:"text"`
}

// WirePayload is the JSON body posted to a webhook URL.
type WirePayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// IsEmpty reports whether the payload carries neither text nor embeds.
func (p WirePayload) IsEmpty() bool {
	return p.Content == "" && len(p.Embeds) == 0
}

// DeliveryResult classifies the outcome of one outbound webhook call.
// StatusCode is nil when the transport failed before any response arrived.
type DeliveryResult struct {
	Success    bool   `json:"success"`
	StatusCode *int   `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// FiringResult is the per-item outcome reported by the trigger engines.
type FiringResult struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Success    bool   `json:"success"`
	StatusCode *int   `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}
