package mocks

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// MockPromptUsecase is a mock implementation of the prompt use case
type MockPromptUsecase struct {
	ShouldForbidDelete bool
	// AuthoredBy maps prompt ids to the identity allowed to delete them
	AuthoredBy map[string]string

	Deleted []string
}

var _ usecasecontract.IPromptUseCase = (*MockPromptUsecase)(nil)

func NewMockPromptUsecase() *MockPromptUsecase {
	return &MockPromptUsecase{AuthoredBy: map[string]string{"p1": "ext-ada"}}
}

func (m *MockPromptUsecase) DeletePrompt(ctx context.Context, identity, promptID string) error {
	author, ok := m.AuthoredBy[promptID]
	if !ok {
		return failure.NotFound("prompt", promptID)
	}
	if m.ShouldForbidDelete || author != identity {
		return contract.ErrForbidden
	}
	delete(m.AuthoredBy, promptID)
	m.Deleted = append(m.Deleted, promptID)
	return nil
}
