package contract

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// IUserRepository provides access to locally mirrored identity records.
type IUserRepository interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	// GetUserByExternalID resolves an identity provider subject to a user.
	GetUserByExternalID(ctx context.Context, externalID string) (*entity.User, error)
	// UpsertUser creates the user for user.ExternalID or refreshes its profile fields.
	UpsertUser(ctx context.Context, user *entity.User) (*entity.User, error)
}
