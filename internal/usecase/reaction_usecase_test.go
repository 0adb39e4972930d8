package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/events"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/logger"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/repository/memory"
	"github.com/mikiasgoitom/PromptShelf/internal/infrastructure/uuidgen"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
)

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
	open    int
}

func (m *recordingMetrics) ObserveToggle(kind, result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, kind+":"+result)
}

func (m *recordingMetrics) SubscriberOpened() {
	m.mu.Lock()
	m.open++
	m.mu.Unlock()
}

func (m *recordingMetrics) SubscriberClosed() {
	m.mu.Lock()
	m.open--
	m.mu.Unlock()
}

func (m *recordingMetrics) snapshot() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.results...), m.open
}

type mapCache struct {
	mu     sync.Mutex
	counts map[string]entity.PromptCounts
	gets   int
}

func newMapCache() *mapCache { return &mapCache{counts: map[string]entity.PromptCounts{}} }

func (c *mapCache) GetCounts(_ context.Context, id string) (*entity.PromptCounts, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.counts[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *mapCache) SetCounts(_ context.Context, counts *entity.PromptCounts) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[counts.PromptID] = *counts
	return nil
}

func (c *mapCache) InvalidateCounts(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, id)
	return nil
}

type fixture struct {
	store   *memory.Store
	hub     *events.Hub
	metrics *recordingMetrics
	uc      *usecase.ReactionUsecase
	users   map[string]string // identity -> user id
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(uuidgen.NewGenerator())
	hub := events.NewHub()
	m := &recordingMetrics{}
	uc := usecase.NewReactionUsecase(store, store, store, logger.NewZapLogger(nil), 50)
	uc.SetEventBus(hub)
	uc.SetMetrics(m)

	f := &fixture{store: store, hub: hub, metrics: m, uc: uc, users: map[string]string{}}
	for _, identity := range []string{"alice", "bob", "carol"} {
		u, err := store.UpsertUser(context.Background(), &entity.User{ExternalID: identity, Username: identity})
		require.NoError(t, err)
		f.users[identity] = u.ID
	}
	store.PutPrompt(entity.Prompt{ID: "p1", AuthorID: f.users["alice"], Title: "one", IsPublic: true})
	return f
}

func TestToggleRequiresKnownCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ToggleLike(context.Background(), "", "p1")
	assert.True(t, failure.Is(err, failure.KindUnauthenticated))

	_, err = f.uc.ToggleLike(context.Background(), "mallory", "p1")
	assert.True(t, failure.Is(err, failure.KindUnauthenticated))

	counts, err := f.uc.Counts(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.LikeCount)

	results, _ := f.metrics.snapshot()
	assert.Equal(t, []string{"like:unauthenticated", "like:unauthenticated"}, results)
}

func TestToggleMissingPromptIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ToggleBookmark(context.Background(), "bob", "nope")
	require.Error(t, err)
	var nf *failure.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.ID)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.uc.ToggleLike(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipState{PromptID: "p1", Kind: entity.ReactionLike, Active: true, Count: 1, Revision: 1}, state)

	active, err := f.uc.IsActive(ctx, "bob", "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.True(t, active)

	state, err = f.uc.ToggleLike(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.False(t, state.Active)
	assert.Equal(t, int64(0), state.Count)
	assert.Equal(t, int64(2), state.Revision)

	results, _ := f.metrics.snapshot()
	assert.Equal(t, []string{"like:activated", "like:deactivated"}, results)
}

func TestTwoUsersBookmarkScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.uc.ToggleBookmark(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Count)

	b, err := f.uc.ToggleBookmark(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Count)

	a, err = f.uc.ToggleBookmark(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.False(t, a.Active)
	assert.Equal(t, int64(1), a.Count)

	bobActive, err := f.uc.IsActive(ctx, "bob", "p1", entity.ReactionBookmark)
	require.NoError(t, err)
	assert.True(t, bobActive)
}

func TestIsActiveForAnonymousIsFalse(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.ToggleLike(context.Background(), "bob", "p1")
	require.NoError(t, err)

	active, err := f.uc.IsActive(context.Background(), "", "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = f.uc.IsActive(context.Background(), "stranger", "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.False(t, active)
}

type failingReactions struct {
	contract.IReactionRepository
	err error
}

func (r failingReactions) Toggle(context.Context, string, string, entity.ReactionKind, time.Time) (entity.ToggleOutcome, error) {
	return entity.ToggleOutcome{}, r.err
}

func (r failingReactions) IsMember(context.Context, string, string, entity.ReactionKind) (bool, error) {
	return false, r.err
}

func (r failingReactions) Snapshot(context.Context, string, string, entity.ReactionKind) (entity.MembershipState, error) {
	return entity.MembershipState{}, r.err
}

func TestStoreErrorsAreTransient(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("connection reset")
	uc := usecase.NewReactionUsecase(failingReactions{err: cause}, f.store, f.store, logger.NewZapLogger(nil), 10)

	_, err := uc.ToggleLike(context.Background(), "bob", "p1")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindTransient))
	assert.ErrorIs(t, err, cause)

	_, err = uc.IsActive(context.Background(), "bob", "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindTransient))

	_, err = uc.State(context.Background(), "bob", "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindTransient))
}

func TestStateCombinesFlagAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.ToggleLike(ctx, "bob", "p1")
	require.NoError(t, err)
	_, err = f.uc.ToggleLike(ctx, "carol", "p1")
	require.NoError(t, err)

	state, err := f.uc.State(ctx, "bob", "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipState{PromptID: "p1", Kind: entity.ReactionLike, Active: true, Count: 2, Revision: 2}, state)

	anon, err := f.uc.State(ctx, "", "p1", entity.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipState{PromptID: "p1", Kind: entity.ReactionLike, Active: false, Count: 2, Revision: 2}, anon)

	_, err = f.uc.State(ctx, "bob", "gone", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindNotFound))
	_, err = f.uc.State(ctx, "", "gone", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindNotFound))
}

func nextState(t *testing.T, ch <-chan entity.MembershipState) entity.MembershipState {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for membership state")
	}
	return entity.MembershipState{}
}

func TestWatchFollowsCommits(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := f.uc.Watch(ctx, "bob", "p1", entity.ReactionLike)
	require.NoError(t, err)
	initial := nextState(t, ch)
	assert.False(t, initial.Active)
	assert.Equal(t, int64(0), initial.Count)

	_, err = f.uc.ToggleLike(context.Background(), "carol", "p1")
	require.NoError(t, err)
	s := nextState(t, ch)
	assert.False(t, s.Active, "another user's like does not flip the watcher's flag")
	assert.Equal(t, int64(1), s.Count)

	_, err = f.uc.ToggleLike(context.Background(), "bob", "p1")
	require.NoError(t, err)
	s = nextState(t, ch)
	assert.True(t, s.Active)
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, int64(2), s.Revision)

	_, open := f.metrics.snapshot()
	assert.Equal(t, 1, open)

	cancel()
	for range ch {
	}
	assert.Eventually(t, func() bool {
		_, open := f.metrics.snapshot()
		return open == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchIgnoresOtherKinds(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.uc.Watch(ctx, "", "p1", entity.ReactionLike)
	require.NoError(t, err)
	nextState(t, ch)

	_, err = f.uc.ToggleBookmark(context.Background(), "bob", "p1")
	require.NoError(t, err)
	_, err = f.uc.ToggleLike(context.Background(), "bob", "p1")
	require.NoError(t, err)

	s := nextState(t, ch)
	assert.Equal(t, entity.ReactionLike, s.Kind)
	assert.Equal(t, int64(1), s.Count)
	assert.False(t, s.Active)
}

func TestWatchSeesEveryLikeCommitDespiteBookmarkTraffic(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := f.uc.Watch(ctx, "bob", "p1", entity.ReactionLike)
	require.NoError(t, err)
	nextState(t, ch)

	for i := 0; i < 50; i++ {
		liked, err := f.uc.ToggleLike(context.Background(), "bob", "p1")
		require.NoError(t, err)
		_, err = f.uc.ToggleBookmark(context.Background(), "carol", "p1")
		require.NoError(t, err)

		s := nextState(t, ch)
		for s.Revision < liked.Revision {
			s = nextState(t, ch)
		}
		require.Equal(t, liked.Active, s.Active, "round %d", i)
		require.Equal(t, liked.Count, s.Count, "round %d", i)
	}
}

// commitAfterRead lands bob's like right after the first membership read returns.
type commitAfterRead struct {
	contract.IReactionRepository
	once   sync.Once
	commit func()
}

func (r *commitAfterRead) IsMember(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (bool, error) {
	active, err := r.IReactionRepository.IsMember(ctx, userID, promptID, kind)
	r.once.Do(r.commit)
	return active, err
}

func (r *commitAfterRead) Snapshot(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	state, err := r.IReactionRepository.Snapshot(ctx, userID, promptID, kind)
	r.once.Do(r.commit)
	return state, err
}

func TestWatchFlagSurvivesOwnCommitDuringInitialRead(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &commitAfterRead{IReactionRepository: f.store}
	uc := usecase.NewReactionUsecase(repo, f.store, f.store, logger.NewZapLogger(nil), 10)
	uc.SetEventBus(f.hub)
	repo.commit = func() {
		_, err := uc.ToggleLike(context.Background(), "bob", "p1")
		require.NoError(t, err)
	}

	ch, err := uc.Watch(ctx, "bob", "p1", entity.ReactionLike)
	require.NoError(t, err)

	want, err := f.store.Snapshot(context.Background(), f.users["bob"], "p1", entity.ReactionLike)
	require.NoError(t, err)
	require.True(t, want.Active)

	s := nextState(t, ch)
	for s.Revision < want.Revision {
		s = nextState(t, ch)
	}
	assert.Equal(t, want, s)
}

func TestWatchWithoutBus(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewReactionUsecase(f.store, f.store, f.store, logger.NewZapLogger(nil), 10)
	_, err := uc.Watch(context.Background(), "bob", "p1", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindTransient))
}

func TestWatchUnknownPrompt(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newFixture(t)
	_, err := f.uc.Watch(context.Background(), "bob", "gone", entity.ReactionLike)
	assert.True(t, failure.Is(err, failure.KindNotFound))
	assert.Eventually(t, func() bool { return f.hub.Subscribers("gone") == 0 }, time.Second, 10*time.Millisecond)
}

func TestCountsReadThroughCache(t *testing.T) {
	f := newFixture(t)
	cache := newMapCache()
	f.uc.SetCountsCache(cache)
	ctx := context.Background()

	counts, err := f.uc.Counts(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Revision)
	_, cached := cache.counts["p1"]
	assert.True(t, cached)

	_, err = f.uc.ToggleLike(ctx, "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cache.counts["p1"].LikeCount, "toggle refreshes the cached counts")

	counts, err = f.uc.Counts(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.LikeCount)
}

func TestListReacted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutPrompt(entity.Prompt{ID: "p2", AuthorID: f.users["alice"], Title: "two", IsPublic: true})
	f.store.PutPrompt(entity.Prompt{ID: "hidden", AuthorID: f.users["alice"], Title: "private"})

	for _, id := range []string{"p1", "hidden", "p2"} {
		_, err := f.uc.ToggleBookmark(ctx, "bob", id)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := f.uc.ListReacted(ctx, "bob", entity.ReactionBookmark)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].Prompt.ID)
	assert.Equal(t, "p1", list[1].Prompt.ID)
	assert.False(t, list[0].ReactedAt.IsZero())

	anon, err := f.uc.ListReacted(ctx, "", entity.ReactionBookmark)
	require.NoError(t, err)
	assert.Empty(t, anon)
	assert.NotNil(t, anon)
}
