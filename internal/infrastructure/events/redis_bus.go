package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// RedisBus carries membership changes over Redis pub/sub so every API replica can serve
// live subscriptions for any prompt.
type RedisBus struct {
	rdb    *redis.Client
	logger usecasecontract.IAppLogger
}

var _ contract.IMembershipEventBus = (*RedisBus)(nil)

func NewRedisBus(rdb *redis.Client, logger usecasecontract.IAppLogger) *RedisBus {
	return &RedisBus{rdb: rdb, logger: logger}
}

func membershipChannel(promptID string, kind entity.ReactionKind) string {
	return fmt.Sprintf("promptshelf:membership:%s:%s", promptID, kind)
}

func (b *RedisBus) Publish(ctx context.Context, change entity.MembershipChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode membership change: %w", err)
	}
	if err := b.rdb.Publish(ctx, membershipChannel(change.PromptID, change.Kind), data).Err(); err != nil {
		return fmt.Errorf("failed to publish membership change: %w", err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (b *RedisBus) Subscribe(ctx context.Context, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipChange, error) {
	pubsub := b.rdb.Subscribe(ctx, membershipChannel(promptID, kind))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to membership changes: %w", err)
	}

	out := make(chan entity.MembershipChange, 1)
	msgs := pubsub.Channel()
	go func() {
		defer close(out)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change entity.MembershipChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					if b.logger != nil {
						b.logger.Warnf("dropping malformed membership change on %s: %v", msg.Channel, err)
					}
					continue
				}
				deliverLatest(out, change)
			}
		}
	}()
	return out, nil
}
