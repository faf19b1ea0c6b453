package profileRepo

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

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a ProfileRepository backed by MongoDB.
func NewMongoProfileRepo() ProfileRepository {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("profiles")
	repo := &MongoProfileRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoProfileRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoProfileRepo) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}
	return &profile, nil
}

func (r *MongoProfileRepo) Upsert(ctx context.Context, profile models.UserProfile) error {
	filter := bson.M{"id": profile.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, profile, opts); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, err)
	}
	return nil
}

func (r *MongoProfileRepo) SavePreferredRadius(ctx context.Context, id string, radiusMiles float64) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"preferred_radius_miles": radiusMiles}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to save radius preference for %s: %w", id, err)
	}
	return nil
}
