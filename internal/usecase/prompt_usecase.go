package usecase

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// PromptUsecase implements the prompt operations that touch reactions.
type PromptUsecase struct {
	prompts contract.IPromptRepository
	users   contract.IUserRepository
	logger  usecasecontract.IAppLogger
	cache   contract.ICountsCache
}

// NewPromptUsecase creates a new instance of PromptUsecase
func NewPromptUsecase(prompts contract.IPromptRepository, users contract.IUserRepository, logger usecasecontract.IAppLogger) *PromptUsecase {
	return &PromptUsecase{prompts: prompts, users: users, logger: logger}
}

var _ usecasecontract.IPromptUseCase = (*PromptUsecase)(nil)

// separate instance for cache injection
func (uc *PromptUsecase) SetCountsCache(cache contract.ICountsCache) {
	uc.cache = cache
}

// DeletePrompt removes a prompt together with every like and bookmark on it. Only the
// author may delete; anyone else gets contract.ErrForbidden.
func (uc *PromptUsecase) DeletePrompt(ctx context.Context, identity, promptID string) error {
	user, err := resolveCaller(ctx, uc.users, identity)
	if err != nil {
		return err
	}
	if promptID == "" {
		return promptFailure("delete prompt", promptID, contract.ErrPromptNotFound)
	}

	prompt, err := uc.prompts.GetPromptByID(ctx, promptID)
	if err != nil {
		return promptFailure("delete prompt", promptID, err)
	}
	if prompt.AuthorID != user.ID {
		return contract.ErrForbidden
	}

	if err := uc.prompts.DeletePrompt(ctx, promptID); err != nil {
		if !errors.Is(err, contract.ErrPromptNotFound) {
			uc.logger.Errorf("failed to delete prompt %s: %v", promptID, err)
		}
		return promptFailure("delete prompt", promptID, err)
	}

	if uc.cache != nil {
		if err := uc.cache.InvalidateCounts(context.WithoutCancel(ctx), promptID); err != nil {
			uc.logger.Warnf("failed to invalidate counts for deleted prompt %s: %v", promptID, err)
		}
	}
	uc.logger.Infof("prompt %s deleted by %s", promptID, user.ID)
	return nil
}
