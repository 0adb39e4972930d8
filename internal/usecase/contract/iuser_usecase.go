package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// IUserUseCase mirrors identity provider users into the local store.
type IUserUseCase interface {
	SyncCaller(ctx context.Context, identity string, profile entity.UserProfile) (*entity.User, error)
	ResolveCaller(ctx context.Context, identity string) (*entity.User, error)
}
