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
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Membership records live in one collection per kind.
var reactionCollections = map[entity.ReactionKind]string{
	entity.ReactionLike:     "likes",
	entity.ReactionBookmark: "bookmarks",
}

var counterFields = map[entity.ReactionKind]string{
	entity.ReactionLike:     "like_count",
	entity.ReactionBookmark: "bookmark_count",
}

// ReactionRepository is the MongoDB reaction store. A toggle is one multi-document
// transaction covering the membership record and the prompt's counter.
type ReactionRepository struct {
	client      *mongo.Client
	prompts     *mongo.Collection
	collections map[entity.ReactionKind]*mongo.Collection
	idGen       contract.IUUIDGenerator
}

var _ contract.IReactionRepository = (*ReactionRepository)(nil)

// NewReactionRepository creates and returns a new ReactionRepository instance.
func NewReactionRepository(client *mongo.Client, db *mongo.Database, idGen contract.IUUIDGenerator) *ReactionRepository {
	cols := make(map[entity.ReactionKind]*mongo.Collection, len(reactionCollections))
	for kind, name := range reactionCollections {
		cols[kind] = db.Collection(name)
	}
	return &ReactionRepository{
		client:      client,
		prompts:     db.Collection("prompts"),
		collections: cols,
		idGen:       idGen,
	}
}

func (r *ReactionRepository) collection(kind entity.ReactionKind) (*mongo.Collection, error) {
	c, ok := r.collections[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reaction kind %q", kind)
	}
	return c, nil
}

func transactionOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
}

// livePrompt matches a prompt that has not been removed.
func livePrompt(promptID string) bson.M {
	return bson.M{"_id": promptID, "is_deleted": bson.M{"$ne": true}}
}

// counterUpdate adds delta to field with a floor at zero and bumps the revision in the
// same document write.
func counterUpdate(field string, delta int64, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$max", Value: bson.A{
				int64(0),
				bson.D{{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, int64(0)}}},
					delta,
				}}},
			}}}},
			{Key: "revision", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$revision", int64(0)}}},
				int64(1),
			}}}},
			{Key: "updated_at", Value: now},
		}}},
	}
}

// Toggle deletes the record if present, inserts it otherwise, and moves the counter by
// the matching delta. Concurrent toggles on the same record conflict inside the
// transaction and are retried by the driver.
func (r *ReactionRepository) Toggle(ctx context.Context, userID, promptID string, kind entity.ReactionKind, now time.Time) (entity.ToggleOutcome, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return entity.ToggleOutcome{}, err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return entity.ToggleOutcome{}, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.prompts.FindOne(sc, livePrompt(promptID), options.FindOne().SetProjection(bson.M{"_id": 1})).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, contract.ErrPromptNotFound
			}
			return nil, fmt.Errorf("failed to load prompt: %w", err)
		}

		key := bson.M{"user_id": userID, "prompt_id": promptID}
		del, err := coll.DeleteOne(sc, key)
		if err != nil {
			return nil, fmt.Errorf("failed to remove reaction: %w", err)
		}

		active := false
		delta := int64(-1)
		if del.DeletedCount == 0 {
			record := entity.Reaction{
				ID:        r.idGen.NewUUID(),
				UserID:    userID,
				PromptID:  promptID,
				CreatedAt: now,
			}
			if _, err := coll.InsertOne(sc, record); err != nil {
				return nil, fmt.Errorf("failed to insert reaction: %w", err)
			}
			active = true
			delta = 1
		}

		var updated entity.Prompt
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.prompts.FindOneAndUpdate(sc, livePrompt(promptID), counterUpdate(counterFields[kind], delta, now), opts).Decode(&updated)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, contract.ErrPromptNotFound
			}
			return nil, fmt.Errorf("failed to update prompt counters: %w", err)
		}
		return entity.ToggleOutcome{
			Active:   active,
			Count:    updated.Count(kind),
			Revision: updated.Revision,
		}, nil
	}, transactionOptions())
	if err != nil {
		return entity.ToggleOutcome{}, err
	}
	return res.(entity.ToggleOutcome), nil
}

// IsMember reports whether userID holds kind on promptID.
func (r *ReactionRepository) IsMember(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (bool, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return false, err
	}
	err = coll.FindOne(ctx, bson.M{"user_id": userID, "prompt_id": promptID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to retrieve reaction: %w", err)
	}
	return true, nil
}

// Snapshot reads the prompt's counters and userID's record in one snapshot transaction,
// so the flag and the revision belong to the same commit.
func (r *ReactionRepository) Snapshot(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return entity.MembershipState{}, err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return entity.MembershipState{}, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var prompt entity.Prompt
		projection := bson.M{counterFields[kind]: 1, "revision": 1}
		if err := r.prompts.FindOne(sc, livePrompt(promptID), options.FindOne().SetProjection(projection)).Decode(&prompt); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, contract.ErrPromptNotFound
			}
			return nil, fmt.Errorf("failed to load prompt: %w", err)
		}

		active := true
		err := coll.FindOne(sc, bson.M{"user_id": userID, "prompt_id": promptID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("failed to retrieve reaction: %w", err)
			}
			active = false
		}
		return entity.MembershipState{
			PromptID: promptID,
			Kind:     kind,
			Active:   active,
			Count:    prompt.Count(kind),
			Revision: prompt.Revision,
		}, nil
	}, transactionOptions())
	if err != nil {
		return entity.MembershipState{}, err
	}
	return res.(entity.MembershipState), nil
}

// ListByUser returns the user's records of kind, newest first.
func (r *ReactionRepository) ListByUser(ctx context.Context, userID string, kind entity.ReactionKind, limit int) ([]entity.Reaction, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []entity.Reaction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reactions: %w", err)
	}
	for i := range out {
		out[i].Kind = kind
	}
	return out, nil
}

// DeleteByPrompt removes the records of every kind on promptID. Passed a
// mongo.SessionContext it joins the caller's transaction.
func (r *ReactionRepository) DeleteByPrompt(ctx context.Context, promptID string) (int64, error) {
	var total int64
	for _, kind := range entity.ReactionKinds {
		res, err := r.collections[kind].DeleteMany(ctx, bson.M{"prompt_id": promptID})
		if err != nil {
			return total, fmt.Errorf("failed to delete %s reactions: %w", kind, err)
		}
		total += res.DeletedCount
	}
	return total, nil
}
