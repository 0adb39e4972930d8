package mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// MockUserUsecase is a mock implementation of the UserUsecase interface
type MockUserUsecase struct {
	// Control mock behavior
	ShouldFailSync    bool
	ShouldRejectSync  bool
	ShouldFailResolve bool

	// Return values
	MockUser entity.User
	// LastProfile is the profile passed to the latest SyncCaller call
	LastProfile entity.UserProfile
}

// Ensure MockUserUsecase implements the correct interface for handler.NewUserHandler
var _ usecasecontract.IUserUseCase = (*MockUserUsecase)(nil)

func NewMockUserUsecase() *MockUserUsecase {
	return &MockUserUsecase{
		MockUser: entity.User{
			ID:         "mock-user-id",
			ExternalID: "ext-ada",
			Username:   "ada",
		},
	}
}

func (m *MockUserUsecase) SyncCaller(ctx context.Context, identity string, profile entity.UserProfile) (*entity.User, error) {
	m.LastProfile = profile
	if identity == "" {
		return nil, failure.Unauthenticated("")
	}
	if m.ShouldRejectSync {
		return nil, fmt.Errorf("%w: username %q is not valid", usecase.ErrInvalidProfile, profile.Username)
	}
	if m.ShouldFailSync {
		return nil, failure.Transient("sync caller", errors.New("store down"))
	}
	user := m.MockUser
	user.ExternalID = identity
	if profile.Username != "" {
		user.Username = profile.Username
	}
	return &user, nil
}

func (m *MockUserUsecase) ResolveCaller(ctx context.Context, identity string) (*entity.User, error) {
	if m.ShouldFailResolve {
		return nil, failure.Unauthenticated("user not found")
	}
	user := m.MockUser
	user.ExternalID = identity
	return &user, nil
}
