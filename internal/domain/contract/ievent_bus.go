package contract

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// IMembershipEventBus fans committed membership changes out to live readers.
type IMembershipEventBus interface {
	Publish(ctx context.Context, change entity.MembershipChange) error
	// Subscribe delivers changes of kind on promptID until ctx is done, then closes the
	// channel. A slow reader may miss intermediate changes of kind but always receives
	// the latest one; changes of other kinds never displace it.
	Subscribe(ctx context.Context, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipChange, error)
}
