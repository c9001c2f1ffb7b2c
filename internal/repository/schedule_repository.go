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

const schedulesCollection = "recurring_schedules"

// ScheduleRepository handles recurring schedule data operations
type ScheduleRepository struct {
	client *mongodb.MongoClient
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(client *mongodb.MongoClient) *ScheduleRepository {
	return &ScheduleRepository{client: client}
}

// EnsureIndexes creates necessary indexes for optimal query performance
func (r *ScheduleRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "next_trigger_at", Value: 1},
			},
			Options: options.Index().SetName("due_idx"),
		},
		{
			Keys:    bson.D{{Key: "target_id", Value: 1}},
			Options: options.Index().SetName("target_idx"),
		},
	}

	return r.client.CreateIndexes(ctx, schedulesCollection, indexes)
}

// Create creates a new recurring schedule
func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.RecurringSchedule) error {
	schedule.ID = primitive.NewObjectID()
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()

	_, err := r.client.Collection(schedulesCollection).InsertOne(ctx, schedule)
	return err
}

// FindByID finds a recurring schedule by ID
func (r *ScheduleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.RecurringSchedule, error) {
	var schedule domain.RecurringSchedule
	err := r.client.Collection(schedulesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFoundError("schedule not found", err)
	}
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}

// FindAll returns schedules with pagination, newest first
func (r *ScheduleRepository) FindAll(ctx context.Context, page, pageSize int) ([]*domain.RecurringSchedule, int64, error) {
	filter := bson.M{}

	total, err := r.client.Collection(schedulesCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize)).
		SetSort(bson.M{"created_at": -1})

	cursor, err := r.client.Collection(schedulesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var schedules []*domain.RecurringSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, 0, err
	}

	return schedules, total, nil
}

// FindDue returns active schedules whose next trigger time has passed
func (r *ScheduleRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.RecurringSchedule, error) {
	filter := bson.M{
		"is_active":       true,
		"next_trigger_at": bson.M{"$lte": now},
	}
	cursor, err := r.client.Collection(schedulesCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []*domain.RecurringSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}

	return schedules, nil
}

// Update updates a recurring schedule
func (r *ScheduleRepository) Update(ctx context.Context, schedule *domain.RecurringSchedule) error {
	schedule.UpdatedAt = time.Now()

	filter := bson.M{"_id": schedule.ID}
	update := bson.M{"$set": schedule}

	_, err := r.client.Collection(schedulesCollection).UpdateOne(ctx, filter, update)
	return err
}

// UpdateAfterFiring stamps the firing time and stores the recomputed next
// trigger time
func (r *ScheduleRepository) UpdateAfterFiring(ctx context.Context, id primitive.ObjectID, firedAt, nextTriggerAt time.Time) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"last_triggered_at": firedAt,
			"next_trigger_at":   nextTriggerAt,
			"updated_at":        time.Now(),
		},
	}

	_, err := r.client.Collection(schedulesCollection).UpdateOne(ctx, filter, update)
	return err
}

// IncrementSuccess increments the schedule's success counter
func (r *ScheduleRepository) IncrementSuccess(ctx context.Context, id primitive.ObjectID) error {
	return r.incrementCounter(ctx, id, "success_count")
}

// IncrementFailure increments the schedule's failure counter
func (r *ScheduleRepository) IncrementFailure(ctx context.Context, id primitive.ObjectID) error {
	return r.incrementCounter(ctx, id, "failure_count")
}

func (r *ScheduleRepository) incrementCounter(ctx context.Context, id primitive.ObjectID, field string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := r.client.Collection(schedulesCollection).UpdateOne(ctx, filter, update)
	return err
}

// CountByTarget counts schedules referencing a target
func (r *ScheduleRepository) CountByTarget(ctx context.Context, targetID primitive.ObjectID) (int64, error) {
	return r.client.Collection(schedulesCollection).CountDocuments(ctx, bson.M{"target_id": targetID})
}

// Delete removes a recurring schedule
func (r *ScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.client.Collection(schedulesCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
