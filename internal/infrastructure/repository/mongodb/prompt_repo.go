package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PromptRepository represents the MongoDB implementation of the IPromptRepository interface.
type PromptRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	reactions  *ReactionRepository
}

var _ contract.IPromptRepository = (*PromptRepository)(nil)

// NewPromptRepository creates and returns a new PromptRepository instance. reactions is
// used to cascade prompt removal.
func NewPromptRepository(client *mongo.Client, db *mongo.Database, reactions *ReactionRepository) *PromptRepository {
	return &PromptRepository{
		client:     client,
		collection: db.Collection("prompts"),
		reactions:  reactions,
	}
}

// GetPromptByID retrieves a single prompt by its unique id.
func (r *PromptRepository) GetPromptByID(ctx context.Context, promptID string) (*entity.Prompt, error) {
	var prompt entity.Prompt
	err := r.collection.FindOne(ctx, livePrompt(promptID)).Decode(&prompt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to retrieve prompt: %w", err)
	}
	return &prompt, nil
}

// GetPromptsByIDs returns the live prompts among promptIDs keyed by id.
func (r *PromptRepository) GetPromptsByIDs(ctx context.Context, promptIDs []string) (map[string]*entity.Prompt, error) {
	out := make(map[string]*entity.Prompt, len(promptIDs))
	if len(promptIDs) == 0 {
		return out, nil
	}
	filter := bson.M{"_id": bson.M{"$in": promptIDs}, "is_deleted": bson.M{"$ne": true}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve prompts: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p entity.Prompt
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode prompt: %w", err)
		}
		out[p.ID] = &p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompts: %w", err)
	}
	return out, nil
}

// GetPromptCounts returns only the counters and revision of a prompt.
func (r *PromptRepository) GetPromptCounts(ctx context.Context, promptID string) (*entity.PromptCounts, error) {
	var prompt entity.Prompt
	projection := bson.M{
		"like_count":     1,
		"bookmark_count": 1,
		"revision":       1,
	}
	err := r.collection.FindOne(ctx, livePrompt(promptID), options.FindOne().SetProjection(projection)).Decode(&prompt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to get prompt counts: %w", err)
	}
	return promptCounts(&prompt), nil
}

// DeletePrompt marks a prompt as deleted and removes its membership records in the
// same transaction.
func (r *PromptRepository) DeletePrompt(ctx context.Context, promptID string) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now()}, "$inc": bson.M{"revision": 1}}
		res, err := r.collection.UpdateOne(sc, livePrompt(promptID), update)
		if err != nil {
			return nil, fmt.Errorf("failed to delete prompt: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, contract.ErrPromptNotFound
		}
		return r.reactions.DeleteByPrompt(sc, promptID)
	}, transactionOptions())
	return err
}

func promptCounts(p *entity.Prompt) *entity.PromptCounts {
	return &entity.PromptCounts{
		PromptID:      p.ID,
		LikeCount:     p.Count(entity.ReactionLike),
		BookmarkCount: p.Count(entity.ReactionBookmark),
		Revision:      p.Revision,
	}
}
