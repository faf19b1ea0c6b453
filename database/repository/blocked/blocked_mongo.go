package blockedRepo

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

// MongoBlockedRepo implements BlockedRepository using MongoDB.
type MongoBlockedRepo struct {
	coll *mongo.Collection
}

// NewMongoBlockedRepo creates a BlockedRepository backed by MongoDB.
func NewMongoBlockedRepo() BlockedRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("blocked_venues")
	repo := &MongoBlockedRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBlockedRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Block upserts the suppression so repeated blocks of the same venue stay
// idempotent.
func (r *MongoBlockedRepo) Block(ctx context.Context, block models.BlockedVenue) error {
	filter := bson.M{"user_id": block.UserID, "provider_id": block.ProviderID}
	update := bson.M{"$set": block}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to block venue %s for user %s: %w", block.ProviderID, block.UserID, err)
	}
	return nil
}

func (r *MongoBlockedRepo) Unblock(ctx context.Context, userID, providerID string) error {
	filter := bson.M{"user_id": userID, "provider_id": providerID}
	if _, err := r.coll.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to unblock venue %s for user %s: %w", providerID, userID, err)
	}
	return nil
}

func (r *MongoBlockedRepo) ListByUser(ctx context.Context, userID string) ([]models.BlockedVenue, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked venues for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var blocks []models.BlockedVenue
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocked venues: %w", err)
	}
	return blocks, nil
}

func (r *MongoBlockedRepo) ListProviderIDs(ctx context.Context, userID string) ([]string, error) {
	blocks, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.ProviderID)
	}
	return ids, nil
}
