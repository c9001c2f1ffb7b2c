package repository

import (
	"context"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
	"github.com/vhvplatform/go-webhook-scheduler/internal/shared/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const logsCollection = "message_logs"

// LogRepository handles the append-only delivery history. Entries are never
// updated or deleted once written.
type LogRepository struct {
	client *mongodb.MongoClient
}

// NewLogRepository creates a new log repository
func NewLogRepository(client *mongodb.MongoClient) *LogRepository {
	return &LogRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *LogRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "target_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("target_created_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, logsCollection, indexes)
}

// Append writes a new log entry
func (r *LogRepository) Append(ctx context.Context, entry *domain.MessageLogEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()

	_, err := r.client.Collection(logsCollection).InsertOne(ctx, entry)
	return err
}

// FindByTarget returns log entries for a target with pagination, newest first
func (r *LogRepository) FindByTarget(ctx context.Context, targetID primitive.ObjectID, page, pageSize int) ([]*domain.MessageLogEntry, int64, error) {
	filter := bson.M{"target_id": targetID}

	total, err := r.client.Collection(logsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.client.Collection(logsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var entries []*domain.MessageLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
