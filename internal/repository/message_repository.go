package repository

import (
	"context"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	apperrors "github.com/vhvplatform/go-webhook-scheduler/internal/shared/errors"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messagesCollection = "deferred_messages"

// MessageRepository handles deferred message data operations
type MessageRepository struct {
	client *mongodb.MongoClient
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(client *mongodb.MongoClient) *MessageRepository {
	return &MessageRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "scheduled_for", Value: 1},
			},
			Options: options.Index().SetName("due_pending_idx"),
		},
		{
			Keys:    bson.D{{Key: "target_id", Value: 1}},
			Options: options.Index().SetName("target_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, messagesCollection, indexes)
}

// Create creates a new deferred message
func (r *MessageRepository) Create(ctx context.Context, msg *domain.DeferredMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()

	_, err := r.client.Collection(messagesCollection).InsertOne(ctx, msg)
	return err
}

// FindByID finds a deferred message by ID
func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.DeferredMessage, error) {
	var msg domain.DeferredMessage
	err := r.client.Collection(messagesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFoundError("message not found", err)
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

// FindAll returns deferred messages with pagination, newest first
func (r *MessageRepository) FindAll(ctx context.Context, page, pageSize int) ([]*domain.DeferredMessage, int64, error) {
	filter := bson.M{}

	total, err := r.client.Collection(messagesCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.client.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var messages []*domain.DeferredMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// FindDuePending returns pending messages whose scheduled time has passed,
// earliest-scheduled first with creation time as the tie breaker
func (r *MessageRepository) FindDuePending(ctx context.Context, now time.Time) ([]*domain.DeferredMessage, error) {
	filter := bson.M{
		"status":        domain.MessageStatusPending,
		"scheduled_for": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "scheduled_for", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.client.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*domain.DeferredMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkSent transitions a message to its terminal sent state and records the
// delivery outcome
func (r *MessageRepository) MarkSent(ctx context.Context, id primitive.ObjectID, outcome domain.MessageOutcome, statusCode *int, errMsg string, sentAt time.Time) error {
	set := bson.M{
		"status":     domain.MessageStatusSent,
		"outcome":    outcome,
		"sent_at":    sentAt,
		"updated_at": time.Now(),
	}
	if statusCode != nil {
		set["status_code"] = *statusCode
	}
	if errMsg != "" {
		set["error"] = errMsg
	}

	filter := bson.M{"_id": id}
	_, err := r.client.Collection(messagesCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	return err
}

// MarkCancelled transitions a message to its terminal cancelled state
func (r *MessageRepository) MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string) error {
	set := bson.M{
		"status":     domain.MessageStatusCancelled,
		"updated_at": time.Now(),
	}
	if reason != "" {
		set["error"] = reason
	}

	filter := bson.M{"_id": id}
	_, err := r.client.Collection(messagesCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	return err
}
