package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// IReactionUseCase is the toggle procedure plus the membership queries built on it.
// identity is the identity provider subject of the caller; empty means anonymous.
type IReactionUseCase interface {
	Toggle(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error)
	ToggleLike(ctx context.Context, identity, promptID string) (entity.MembershipState, error)
	ToggleBookmark(ctx context.Context, identity, promptID string) (entity.MembershipState, error)
	IsActive(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (bool, error)
	State(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error)
	Watch(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipState, error)
	Counts(ctx context.Context, promptID string) (*entity.PromptCounts, error)
	ListReacted(ctx context.Context, identity string, kind entity.ReactionKind) ([]entity.ReactedPrompt, error)
}
