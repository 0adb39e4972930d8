package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (user_id, prompt_id) index is what rules out duplicate membership records.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range reactionCollections {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "prompt_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("by_user_prompt"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("by_user"),
			},
			{
				Keys:    bson.D{{Key: "prompt_id", Value: 1}},
				Options: options.Index().SetName("by_prompt"),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_external_id"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("by_username"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes on users: %w", err)
	}

	_, err = db.Collection("prompts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "author_id", Value: 1}},
		Options: options.Index().SetName("by_author"),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes on prompts: %w", err)
	}
	return nil
}
