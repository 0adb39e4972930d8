package usecase

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
)

var errLiveUnavailable = errors.New("live updates are not configured")

// resolveCaller maps an identity provider subject to the local user. An empty identity
// or an unknown subject is Unauthenticated; a store error is Transient.
func resolveCaller(ctx context.Context, users contract.IUserRepository, identity string) (*entity.User, error) {
	if identity == "" {
		return nil, failure.Unauthenticated("")
	}
	user, err := users.GetUserByExternalID(ctx, identity)
	if err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, failure.Unauthenticated("user not found")
		}
		return nil, failure.Transient("resolve caller", err)
	}
	return user, nil
}

// promptFailure translates a prompt repository error.
func promptFailure(op, promptID string, err error) error {
	if errors.Is(err, contract.ErrPromptNotFound) {
		return failure.NotFound("prompt", promptID)
	}
	return failure.Transient(op, err)
}
