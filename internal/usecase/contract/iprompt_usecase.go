package usecasecontract

import "context"

// IPromptUseCase covers the prompt lifecycle operations that touch reactions.
type IPromptUseCase interface {
	DeletePrompt(ctx context.Context, identity, promptID string) error
}
