package contract

import (
	"context"
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// IReactionRepository is the reaction store. Toggle is the only writer of membership
// records and prompt counters.
type IReactionRepository interface {
	// Toggle flips the membership of (userID, promptID, kind) and adjusts the prompt's
	// counter in one atomic unit. It returns ErrPromptNotFound for a missing prompt.
	Toggle(ctx context.Context, userID, promptID string, kind entity.ReactionKind, now time.Time) (entity.ToggleOutcome, error)
	IsMember(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (bool, error)
	// Snapshot returns userID's flag with the counter and revision from the same commit.
	// It returns ErrPromptNotFound for a missing prompt.
	Snapshot(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (entity.MembershipState, error)
	// ListByUser returns the user's records of kind, newest first.
	ListByUser(ctx context.Context, userID string, kind entity.ReactionKind, limit int) ([]entity.Reaction, error)
	// DeleteByPrompt removes membership records of every kind for promptID.
	DeleteByPrompt(ctx context.Context, promptID string) (int64, error)
}
