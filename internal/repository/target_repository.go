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

const targetsCollection = "webhook_targets"

// TargetRepository handles webhook target data operations
type TargetRepository struct {
	client *mongodb.MongoClient
}

// NewTargetRepository creates a new target repository
func NewTargetRepository(client *mongodb.MongoClient) *TargetRepository {
	return &TargetRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *TargetRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx"),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}},
			Options: options.Index().SetName("is_active_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, targetsCollection, indexes)
}

// Create creates a new webhook target
func (r *TargetRepository) Create(ctx context.Context, target *domain.WebhookTarget) error {
	target.ID = primitive.NewObjectID()
	target.CreatedAt = time.Now()
	target.UpdatedAt = time.Now()

	_, err := r.client.Collection(targetsCollection).InsertOne(ctx, target)
	return err
}

// FindByID finds a webhook target by ID
func (r *TargetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.WebhookTarget, error) {
	var target domain.WebhookTarget
	err := r.client.Collection(targetsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFoundError("webhook target not found", err)
	}
	if err != nil {
		return nil, err
	}

	return &target, nil
}

// FindAll returns all webhook targets, newest first
func (r *TargetRepository) FindAll(ctx context.Context) ([]*domain.WebhookTarget, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.client.Collection(targetsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var targets []*domain.WebhookTarget
	if err = cursor.All(ctx, &targets); err != nil {
		return nil, err
	}

	return targets, nil
}

// Update updates a webhook target
func (r *TargetRepository) Update(ctx context.Context, target *domain.WebhookTarget) error {
	target.UpdatedAt = time.Now()

	filter := bson.M{"_id": target.ID}
	update := bson.M{"$set": target}

	_, err := r.client.Collection(targetsCollection).UpdateOne(ctx, filter, update)
	return err
}

// SetActive flips the active flag of a target
func (r *TargetRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"is_active":  active,
			"updated_at": time.Now(),
		},
	}

	_, err := r.client.Collection(targetsCollection).UpdateOne(ctx, filter, update)
	return err
}

// RecordSuccess increments the success counter and stamps last use
func (r *TargetRepository) RecordSuccess(ctx context.Context, id primitive.ObjectID, usedAt time.Time) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"success_count": 1},
		"$set": bson.M{
			"last_used_at": usedAt,
			"updated_at":   time.Now(),
		},
	}

	_, err := r.client.Collection(targetsCollection).UpdateOne(ctx, filter, update)
	return err
}

// RecordFailure increments the failure counter
func (r *TargetRepository) RecordFailure(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"failure_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := r.client.Collection(targetsCollection).UpdateOne(ctx, filter, update)
	return err
}

// Delete removes a webhook target
func (r *TargetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.client.Collection(targetsCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
