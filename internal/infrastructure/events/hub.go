// Package events fans committed membership changes out to live subscribers.
//
// A subscription covers one prompt and one reaction kind. Subscribers get a channel with
// room for one change. When a subscriber falls behind, the pending change is replaced by
// the newer one of the same kind: intermediate states may be skipped but the latest is
// always delivered.
package events

import (
	"context"
	"sync"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

type topic struct {
	promptID string
	kind     entity.ReactionKind
}

// Hub is an in-process IMembershipEventBus.
type Hub struct {
	mu   sync.Mutex
	subs map[topic]map[chan entity.MembershipChange]struct{}
}

var _ contract.IMembershipEventBus = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[topic]map[chan entity.MembershipChange]struct{})}
}

// Publish never blocks on slow subscribers.
func (h *Hub) Publish(ctx context.Context, change entity.MembershipChange) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[topic{change.PromptID, change.Kind}] {
		deliverLatest(ch, change)
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := topic{promptID, kind}
	ch := make(chan entity.MembershipChange, 1)

	h.mu.Lock()
	set, ok := h.subs[key]
	if !ok {
		set = make(map[chan entity.MembershipChange]struct{})
		h.subs[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[key], ch)
		if len(h.subs[key]) == 0 {
			delete(h.subs, key)
		}
		close(ch)
		h.mu.Unlock()
	}()
	return ch, nil
}

// Subscribers returns the number of open subscriptions on promptID across kinds.
func (h *Hub) Subscribers(promptID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for key, set := range h.subs {
		if key.promptID == promptID {
			n += len(set)
		}
	}
	return n
}

// deliverLatest sends change on ch, displacing a pending unread change if ch is full.
// ch must have a buffer and a single sender at a time.
func deliverLatest(ch chan entity.MembershipChange, change entity.MembershipChange) {
	select {
	case ch <- change:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- change:
	default:
	}
}
