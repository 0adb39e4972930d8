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

type MongoUserRepository struct {
	collection *mongo.Collection
	idGen      contract.IUUIDGenerator
}

var _ contract.IUserRepository = (*MongoUserRepository)(nil)

func NewMongoUserRepository(collection *mongo.Collection, idGen contract.IUUIDGenerator) *MongoUserRepository {
	return &MongoUserRepository{collection: collection, idGen: idGen}
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, contract.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &user, nil
}

// UpsertUser creates the user for user.ExternalID or refreshes its profile fields and
// returns the stored record.
func (r *MongoUserRepository) UpsertUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.ExternalID == "" {
		return nil, errors.New("upsert user: external id is required")
	}
	now := time.Now()
	id := user.ID
	if id == "" {
		id = r.idGen.NewUUID()
	}
	update := bson.M{
		"$set": bson.M{
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        id,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored entity.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"external_id": user.ExternalID}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &stored, nil
}
