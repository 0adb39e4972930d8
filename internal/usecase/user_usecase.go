package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// UserUsecase implements the UserUseCase interface.
type UserUsecase struct {
	userRepo  contract.IUserRepository
	logger    usecasecontract.IAppLogger
	validator usecasecontract.IValidator
}

// NewUserUsecase creates a new UserUsecase instance.
func NewUserUsecase(
	userRepo contract.IUserRepository,
	logger usecasecontract.IAppLogger,
	validator usecasecontract.IValidator,
) *UserUsecase {
	return &UserUsecase{
		userRepo:  userRepo,
		logger:    logger,
		validator: validator,
	}
}

// check if UserUsecase implements the IUserUseCase
var _ usecasecontract.IUserUseCase = (*UserUsecase)(nil)

// ErrInvalidProfile wraps profile validation failures.
var ErrInvalidProfile = errors.New("invalid profile")

// SyncCaller creates or refreshes the local user for identity. The identity provider is
// the source of truth for profile fields; a blank username falls back to identity.
func (uc *UserUsecase) SyncCaller(ctx context.Context, identity string, profile entity.UserProfile) (*entity.User, error) {
	if identity == "" {
		return nil, failure.Unauthenticated("")
	}
	username := profile.Username
	if username == "" {
		username = identity
	}
	if err := uc.validator.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if profile.AvatarURL != nil {
		if err := uc.validator.ValidateURL(*profile.AvatarURL); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}

	user, err := uc.userRepo.UpsertUser(ctx, &entity.User{
		ExternalID:  identity,
		Username:    username,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	})
	if err != nil {
		uc.logger.Errorf("failed to sync user %s: %v", identity, err)
		return nil, failure.Transient("sync caller", err)
	}
	uc.logger.Debugf("synced user %s as %s", identity, user.ID)
	return user, nil
}

// ResolveCaller returns the local user for identity.
func (uc *UserUsecase) ResolveCaller(ctx context.Context, identity string) (*entity.User, error) {
	return resolveCaller(ctx, uc.userRepo, identity)
}
