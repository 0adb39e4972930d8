package contract

import (
	"context"
	"errors"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

var (
	// ErrPromptNotFound is returned when a prompt does not exist or has been removed.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrForbidden is returned when the caller does not own the prompt.
	ErrForbidden = errors.New("forbidden")
)

// IPromptRepository provides read access to prompts plus cascade removal. Counters are
// written only by IReactionRepository.Toggle; authoring lives elsewhere.
type IPromptRepository interface {
	GetPromptByID(ctx context.Context, promptID string) (*entity.Prompt, error)
	GetPromptsByIDs(ctx context.Context, promptIDs []string) (map[string]*entity.Prompt, error)
	GetPromptCounts(ctx context.Context, promptID string) (*entity.PromptCounts, error)
	// DeletePrompt removes the prompt and every membership record pointing at it atomically.
	DeletePrompt(ctx context.Context, promptID string) error
}
