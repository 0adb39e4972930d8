package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/logger"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/repository/memory"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/uuidgen"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/validator"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
)

func newUserUsecase() *usecase.UserUsecase {
	store := memory.NewStore(uuidgen.NewGenerator())
	return usecase.NewUserUsecase(store, logger.NewZapLogger(nil), validator.NewValidator())
}

func TestSyncCallerCreatesThenRefreshes(t *testing.T) {
	uc := newUserUsecase()
	ctx := context.Background()
	name := "Ada Lovelace"

	created, err := uc.SyncCaller(ctx, "auth0|ada", entity.UserProfile{Username: "ada", DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "ada", created.Username)

	refreshed, err := uc.SyncCaller(ctx, "auth0|ada", entity.UserProfile{Username: "ada.l"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, refreshed.ID)
	assert.Equal(t, "ada.l", refreshed.Username)

	resolved, err := uc.ResolveCaller(ctx, "auth0|ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
}

func TestSyncCallerFallsBackToIdentity(t *testing.T) {
	user, err := newUserUsecase().SyncCaller(context.Background(), "auth0|xyz", entity.UserProfile{})
	require.NoError(t, err)
	assert.Equal(t, "auth0|xyz", user.Username)
}

func TestSyncCallerRejectsBadInput(t *testing.T) {
	uc := newUserUsecase()
	ctx := context.Background()

	_, err := uc.SyncCaller(ctx, "", entity.UserProfile{Username: "ada"})
	assert.True(t, failure.Is(err, failure.KindUnauthenticated))

	_, err = uc.SyncCaller(ctx, "auth0|ada", entity.UserProfile{Username: "no spaces"})
	assert.ErrorIs(t, err, usecase.ErrInvalidProfile)

	avatar := "ftp://example.com/a.png"
	_, err = uc.SyncCaller(ctx, "auth0|ada", entity.UserProfile{Username: "ada", AvatarURL: &avatar})
	assert.ErrorIs(t, err, usecase.ErrInvalidProfile)
}

func TestResolveUnknownCaller(t *testing.T) {
	_, err := newUserUsecase().ResolveCaller(context.Background(), "nobody")
	assert.True(t, failure.Is(err, failure.KindUnauthenticated))
}
