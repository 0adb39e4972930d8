package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// MockReactionUsecase is a mock implementation of the reaction use case
type MockReactionUsecase struct {
	// Control mock behavior
	ShouldFailToggle      bool
	ShouldFailState       bool
	ShouldFailCounts      bool
	ShouldFailWatch       bool
	ShouldFailListReacted bool
	// FailWith overrides the error returned by a failing call
	FailWith error

	// Return values
	MockState   entity.MembershipState
	MockCounts  entity.PromptCounts
	MockReacted []entity.ReactedPrompt
	// Live feeds Watch; it is closed by the test
	Live chan entity.MembershipState

	mu    sync.Mutex
	Calls []string
}

var _ usecasecontract.IReactionUseCase = (*MockReactionUsecase)(nil)

func NewMockReactionUsecase() *MockReactionUsecase {
	return &MockReactionUsecase{
		MockState: entity.MembershipState{
			PromptID: "p1",
			Kind:     entity.ReactionLike,
			Active:   true,
			Count:    6,
			Revision: 12,
		},
		MockCounts: entity.PromptCounts{PromptID: "p1", LikeCount: 6, BookmarkCount: 2, Revision: 12},
	}
}

func (m *MockReactionUsecase) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallLog returns a copy of Calls that is safe to read while requests are in flight.
func (m *MockReactionUsecase) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

func (m *MockReactionUsecase) failure(def error) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	return def
}

func (m *MockReactionUsecase) Toggle(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	m.record("Toggle:" + identity + ":" + promptID + ":" + string(kind))
	if identity == "" {
		return entity.MembershipState{}, failure.Unauthenticated("")
	}
	if m.ShouldFailToggle {
		return entity.MembershipState{}, m.failure(failure.Transient("toggle", errors.New("store down")))
	}
	s := m.MockState
	s.PromptID = promptID
	s.Kind = kind
	return s, nil
}

func (m *MockReactionUsecase) ToggleLike(ctx context.Context, identity, promptID string) (entity.MembershipState, error) {
	return m.Toggle(ctx, identity, promptID, entity.ReactionLike)
}

func (m *MockReactionUsecase) ToggleBookmark(ctx context.Context, identity, promptID string) (entity.MembershipState, error) {
	return m.Toggle(ctx, identity, promptID, entity.ReactionBookmark)
}

func (m *MockReactionUsecase) IsActive(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (bool, error) {
	m.record("IsActive:" + identity + ":" + promptID + ":" + string(kind))
	if m.ShouldFailState {
		return false, m.failure(failure.NotFound("prompt", promptID))
	}
	return identity != "" && kind == entity.ReactionLike, nil
}

func (m *MockReactionUsecase) State(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	m.record("State:" + identity + ":" + promptID + ":" + string(kind))
	if m.ShouldFailState {
		return entity.MembershipState{}, m.failure(failure.NotFound("prompt", promptID))
	}
	s := m.MockState
	s.PromptID = promptID
	s.Kind = kind
	s.Active = s.Active && identity != ""
	return s, nil
}

func (m *MockReactionUsecase) Watch(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipState, error) {
	m.record("Watch:" + identity + ":" + promptID + ":" + string(kind))
	if m.ShouldFailWatch {
		return nil, m.failure(failure.NotFound("prompt", promptID))
	}
	out := make(chan entity.MembershipState)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-m.Live:
				if !ok {
					return
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (m *MockReactionUsecase) Counts(ctx context.Context, promptID string) (*entity.PromptCounts, error) {
	m.record("Counts:" + promptID)
	if m.ShouldFailCounts {
		return nil, m.failure(failure.Transient("counts", errors.New("store down")))
	}
	counts := m.MockCounts
	counts.PromptID = promptID
	return &counts, nil
}

func (m *MockReactionUsecase) ListReacted(ctx context.Context, identity string, kind entity.ReactionKind) ([]entity.ReactedPrompt, error) {
	m.record("ListReacted:" + identity + ":" + string(kind))
	if m.ShouldFailListReacted {
		return nil, m.failure(failure.Transient("list reacted", errors.New("store down")))
	}
	if m.MockReacted == nil {
		return []entity.ReactedPrompt{}, nil
	}
	return m.MockReacted, nil
}
