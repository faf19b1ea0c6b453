package recommendationRepo

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

// MongoRecommendationRepo implements RecommendationRepository using MongoDB.
type MongoRecommendationRepo struct {
	coll *mongo.Collection
}

// NewMongoRecommendationRepo creates a RecommendationRepository backed by MongoDB.
func NewMongoRecommendationRepo() RecommendationRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("recommendation_batches")
	repo := &MongoRecommendationRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoRecommendationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoRecommendationRepo) Get(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error) {
	var batch models.CachedRecommendationBatch
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&batch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batch for user %s: %w", userID, err)
	}
	return &batch, nil
}

// Replace supersedes the user's stored batch wholesale.
func (r *MongoRecommendationRepo) Replace(ctx context.Context, batch models.CachedRecommendationBatch) error {
	filter := bson.M{"user_id": batch.UserID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, batch, opts); err != nil {
		return fmt.Errorf("failed to replace batch for user %s: %w", batch.UserID, err)
	}
	return nil
}

// Append adds load-more results to the stored batch.
func (r *MongoRecommendationRepo) Append(ctx context.Context, userID string, recs []models.ScoredRecommendation) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$push":        bson.M{"recommendations": bson.M{"$each": recs}},
		"$setOnInsert": bson.M{"user_id": userID},
		"$currentDate": bson.M{"generated_at": true},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to append to batch for user %s: %w", userID, err)
	}
	return nil
}

// RemoveByProviderIDs pulls the listed venues out of the stored batch. Used
// by the background purge worker and by venue blocking, never from the feed
// read path.
func (r *MongoRecommendationRepo) RemoveByProviderIDs(ctx context.Context, userID string, providerIDs []string) error {
	if len(providerIDs) == 0 {
		return nil
	}
	filter := bson.M{"user_id": userID}
	update := bson.M{"$pull": bson.M{
		"recommendations": bson.M{"candidate.provider_id": bson.M{"$in": providerIDs}},
	}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to remove entries for user %s: %w", userID, err)
	}
	return nil
}

func (r *MongoRecommendationRepo) Delete(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete batch for user %s: %w", userID, err)
	}
	return nil
}
