package calendarRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wandr/database"
	"wandr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCalendarRepo implements CalendarRepository using MongoDB.
type MongoCalendarRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarRepo creates a CalendarRepository backed by MongoDB.
func NewMongoCalendarRepo() CalendarRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("scheduled_events")
	repo := &MongoCalendarRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCalendarRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// EventsOverlapping returns the user's events intersecting [start, end).
func (r *MongoCalendarRepo) EventsOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.ScheduledEvent, error) {
	filter := bson.M{
		"user_id":    userID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping events for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var events []models.ScheduledEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// PrecedingEvent returns the event that ends latest among those starting
// before the given instant, or nil when the calendar is empty before it.
func (r *MongoCalendarRepo) PrecedingEvent(ctx context.Context, userID string, before time.Time) (*models.ScheduledEvent, error) {
	filter := bson.M{
		"user_id":    userID,
		"start_time": bson.M{"$lt": before},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "end_time", Value: -1}})

	var event models.ScheduledEvent
	err := r.coll.FindOne(ctx, filter, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preceding event for user %s: %w", userID, err)
	}
	return &event, nil
}

func (r *MongoCalendarRepo) Create(ctx context.Context, event models.ScheduledEvent) error {
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert event %s: %w", event.ID, err)
	}
	return nil
}

func (r *MongoCalendarRepo) Delete(ctx context.Context, userID, eventID string) error {
	filter := bson.M{"user_id": userID, "id": eventID}
	if _, err := r.coll.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}
