package feedbackRepo

import (
	"context"
	"fmt"
	"time"

	"wandr/database"
	"wandr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFeedbackRepo implements FeedbackRepository using MongoDB.
type MongoFeedbackRepo struct {
	coll *mongo.Collection
}

// NewMongoFeedbackRepo creates a FeedbackRepository backed by MongoDB.
func NewMongoFeedbackRepo() FeedbackRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("feedback")
	repo := &MongoFeedbackRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoFeedbackRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "provider_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoFeedbackRepo) Create(ctx context.Context, record models.FeedbackRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert feedback %s: %w", record.ID, err)
	}
	return nil
}

// summarize runs the shared aggregation over a match filter.
func (r *MongoFeedbackRepo) summarize(ctx context.Context, match bson.M) (models.FeedbackSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"accepted": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$signal", models.FeedbackAccepted}}, 1, 0,
			}}},
			"rejected": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$signal", models.FeedbackRejected}}, 1, 0,
			}}},
			"rated": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$rating", 0}}, 1, 0,
			}}},
			"avg_rating": bson.M{"$avg": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$rating", 0}}, "$rating", nil,
			}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.FeedbackSummary{}, fmt.Errorf("feedback aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.FeedbackSummary
	if err := cursor.All(ctx, &results); err != nil {
		return models.FeedbackSummary{}, fmt.Errorf("failed to decode feedback summary: %w", err)
	}
	if len(results) == 0 {
		return models.FeedbackSummary{}, nil
	}
	return results[0], nil
}

func (r *MongoFeedbackRepo) SummaryForVenue(ctx context.Context, userID, providerID string) (models.FeedbackSummary, error) {
	return r.summarize(ctx, bson.M{"user_id": userID, "provider_id": providerID})
}

func (r *MongoFeedbackRepo) SummaryForCategory(ctx context.Context, userID string, category models.Category) (models.FeedbackSummary, error) {
	return r.summarize(ctx, bson.M{"user_id": userID, "category": category})
}

// acceptance aggregates accept/reject counts across all users.
func (r *MongoFeedbackRepo) acceptance(ctx context.Context, match bson.M) (models.AcceptanceStats, error) {
	match["signal"] = bson.M{"$in": bson.A{models.FeedbackAccepted, models.FeedbackRejected}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"accepted": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$signal", models.FeedbackAccepted}}, 1, 0,
			}}},
			"total": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.AcceptanceStats{}, fmt.Errorf("acceptance aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.AcceptanceStats
	if err := cursor.All(ctx, &results); err != nil {
		return models.AcceptanceStats{}, fmt.Errorf("failed to decode acceptance stats: %w", err)
	}
	if len(results) == 0 {
		return models.AcceptanceStats{}, nil
	}
	return results[0], nil
}

func (r *MongoFeedbackRepo) AcceptanceForVenue(ctx context.Context, providerID string) (models.AcceptanceStats, error) {
	return r.acceptance(ctx, bson.M{"provider_id": providerID})
}

func (r *MongoFeedbackRepo) AcceptanceForCategory(ctx context.Context, category models.Category) (models.AcceptanceStats, error) {
	return r.acceptance(ctx, bson.M{"category": category})
}
