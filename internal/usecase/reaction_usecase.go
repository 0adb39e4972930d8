package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

const tracerName = "github.com/mikiasgoitom/PromptShelf/internal/usecase"

// Toggle results recorded for successful toggles.
const (
	resultActivated   = "activated"
	resultDeactivated = "deactivated"
)

// ReactionUsecase runs the toggle procedure and the membership queries.
type ReactionUsecase struct {
	reactions contract.IReactionRepository
	prompts   contract.IPromptRepository
	users     contract.IUserRepository
	logger    usecasecontract.IAppLogger
	listLimit int

	cache   contract.ICountsCache
	bus     contract.IMembershipEventBus
	metrics usecasecontract.IReactionMetrics

	tracer      trace.Tracer
	countsGroup singleflight.Group
	now         func() time.Time
}

var _ usecasecontract.IReactionUseCase = (*ReactionUsecase)(nil)

// NewReactionUsecase creates and returns a new ReactionUsecase instance.
func NewReactionUsecase(
	reactions contract.IReactionRepository,
	prompts contract.IPromptRepository,
	users contract.IUserRepository,
	logger usecasecontract.IAppLogger,
	listLimit int,
) *ReactionUsecase {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &ReactionUsecase{
		reactions: reactions,
		prompts:   prompts,
		users:     users,
		logger:    logger,
		listLimit: listLimit,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// SetCountsCache enables the read-through counter cache.
func (u *ReactionUsecase) SetCountsCache(cache contract.ICountsCache) { u.cache = cache }

// SetEventBus enables change publication and Watch.
func (u *ReactionUsecase) SetEventBus(bus contract.IMembershipEventBus) { u.bus = bus }

// SetMetrics enables toggle and live subscriber metrics.
func (u *ReactionUsecase) SetMetrics(m usecasecontract.IReactionMetrics) { u.metrics = m }

// ToggleLike toggles the caller's like on promptID.
func (u *ReactionUsecase) ToggleLike(ctx context.Context, identity, promptID string) (entity.MembershipState, error) {
	return u.Toggle(ctx, identity, promptID, entity.ReactionLike)
}

// ToggleBookmark toggles the caller's bookmark on promptID.
func (u *ReactionUsecase) ToggleBookmark(ctx context.Context, identity, promptID string) (entity.MembershipState, error) {
	return u.Toggle(ctx, identity, promptID, entity.ReactionBookmark)
}

// Toggle flips the caller's membership of kind on promptID and returns the committed
// state. Every error it returns is a failure.Failure.
func (u *ReactionUsecase) Toggle(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	ctx, span := u.tracer.Start(ctx, "reaction.toggle", trace.WithAttributes(
		attribute.String("prompt.id", promptID),
		attribute.String("reaction.kind", string(kind)),
	))
	defer span.End()
	start := u.now()

	state, userID, err := u.toggle(ctx, identity, promptID, kind)
	if err != nil {
		f := failure.Classify(err)
		span.RecordError(f)
		span.SetStatus(codes.Error, f.Error())
		u.observe(kind, string(f.Kind()), start)
		if f.Kind() == failure.KindTransient {
			u.logger.Errorf("toggle %s on prompt %s failed: %v", kind, promptID, f)
		}
		return entity.MembershipState{}, f
	}

	result := resultDeactivated
	if state.Active {
		result = resultActivated
	}
	span.SetAttributes(attribute.Bool("reaction.active", state.Active), attribute.Int64("prompt.revision", state.Revision))
	span.SetStatus(codes.Ok, "")
	u.observe(kind, result, start)

	u.afterCommit(ctx, entity.MembershipChange{
		PromptID: promptID,
		UserID:   userID,
		Kind:     kind,
		Active:   state.Active,
		Count:    state.Count,
		Revision: state.Revision,
	})
	u.logger.Infof("user %s %s prompt %s (%s count %d, revision %d)", userID, result, promptID, kind, state.Count, state.Revision)
	return state, nil
}

func (u *ReactionUsecase) toggle(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, string, error) {
	user, err := resolveCaller(ctx, u.users, identity)
	if err != nil {
		return entity.MembershipState{}, "", err
	}
	if !kind.Valid() {
		return entity.MembershipState{}, user.ID, failure.NotFound("reaction kind", string(kind))
	}
	out, err := u.reactions.Toggle(ctx, user.ID, promptID, kind, u.now())
	if err != nil {
		return entity.MembershipState{}, user.ID, promptFailure("toggle", promptID, err)
	}
	return entity.MembershipState{
		PromptID: promptID,
		Kind:     kind,
		Active:   out.Active,
		Count:    out.Count,
		Revision: out.Revision,
	}, user.ID, nil
}

// afterCommit refreshes the cache and notifies live readers. Failures here are logged
// and never undo the committed toggle.
func (u *ReactionUsecase) afterCommit(ctx context.Context, change entity.MembershipChange) {
	ctx = context.WithoutCancel(ctx)
	u.refreshCounts(ctx, change.PromptID)
	if u.bus != nil {
		if err := u.bus.Publish(ctx, change); err != nil {
			u.logger.Warnf("failed to publish membership change for prompt %s: %v", change.PromptID, err)
		}
	}
}

func (u *ReactionUsecase) refreshCounts(ctx context.Context, promptID string) {
	if u.cache == nil {
		return
	}
	counts, err := u.prompts.GetPromptCounts(ctx, promptID)
	if err == nil {
		err = u.cache.SetCounts(ctx, counts)
	}
	if err != nil {
		if invErr := u.cache.InvalidateCounts(ctx, promptID); invErr != nil {
			u.logger.Warnf("failed to invalidate counts for prompt %s: %v", promptID, invErr)
		}
	}
}

func (u *ReactionUsecase) observe(kind entity.ReactionKind, result string, start time.Time) {
	if u.metrics != nil {
		u.metrics.ObserveToggle(string(kind), result, u.now().Sub(start))
	}
}

// IsActive reports whether the caller holds kind on promptID. Anonymous and unknown
// callers hold nothing.
func (u *ReactionUsecase) IsActive(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (bool, error) {
	ctx, span := u.tracer.Start(ctx, "reaction.is_active", trace.WithAttributes(
		attribute.String("prompt.id", promptID),
		attribute.String("reaction.kind", string(kind)),
	))
	defer span.End()

	userID, err := u.optionalCaller(ctx, identity)
	if err != nil || userID == "" {
		return false, err
	}
	active, err := u.reactions.IsMember(ctx, userID, promptID, kind)
	if err != nil {
		span.RecordError(err)
		return false, failure.Transient("is active", err)
	}
	return active, nil
}

// optionalCaller resolves identity, treating anonymous and unknown callers as "".
func (u *ReactionUsecase) optionalCaller(ctx context.Context, identity string) (string, error) {
	user, err := resolveCaller(ctx, u.users, identity)
	if err != nil {
		if failure.Is(err, failure.KindUnauthenticated) {
			return "", nil
		}
		return "", err
	}
	return user.ID, nil
}

// State returns the caller's flag with the prompt's counter and revision. A signed-in
// caller's flag is read together with the counter so both belong to the same commit;
// anonymous callers get the cached counter.
func (u *ReactionUsecase) State(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	if !kind.Valid() {
		return entity.MembershipState{}, failure.NotFound("reaction kind", string(kind))
	}
	userID, err := u.optionalCaller(ctx, identity)
	if err != nil {
		return entity.MembershipState{}, err
	}
	if userID != "" {
		return u.snapshot(ctx, userID, promptID, kind)
	}
	counts, err := u.Counts(ctx, promptID)
	if err != nil {
		return entity.MembershipState{}, err
	}
	return stateFromCounts(counts, kind, false), nil
}

func (u *ReactionUsecase) snapshot(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	ctx, span := u.tracer.Start(ctx, "reaction.snapshot", trace.WithAttributes(
		attribute.String("prompt.id", promptID),
		attribute.String("reaction.kind", string(kind)),
	))
	defer span.End()

	state, err := u.reactions.Snapshot(ctx, userID, promptID, kind)
	if err != nil {
		span.RecordError(err)
		return entity.MembershipState{}, promptFailure("state", promptID, err)
	}
	return state, nil
}

func stateFromCounts(counts *entity.PromptCounts, kind entity.ReactionKind, active bool) entity.MembershipState {
	count := counts.LikeCount
	if kind == entity.ReactionBookmark {
		count = counts.BookmarkCount
	}
	return entity.MembershipState{
		PromptID: counts.PromptID,
		Kind:     kind,
		Active:   active,
		Count:    count,
		Revision: counts.Revision,
	}
}

// Watch emits the current state, then a new state after every committed toggle of kind
// on promptID. States are revision ordered; a slow reader skips to the latest. The
// channel closes when ctx is done, or when a signed-in watcher's state can no longer be
// read.
//
// Changes may be coalesced or arrive out of commit order, so a signed-in watcher's flag
// is re-read with its counter on every change rather than derived from the change.
func (u *ReactionUsecase) Watch(ctx context.Context, identity, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipState, error) {
	if u.bus == nil {
		return nil, failure.Transient("watch", errLiveUnavailable)
	}
	if !kind.Valid() {
		return nil, failure.NotFound("reaction kind", string(kind))
	}
	userID, err := u.optionalCaller(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Subscribe before reading so no commit between the read and the subscription is lost.
	subCtx, cancel := context.WithCancel(ctx)
	changes, err := u.bus.Subscribe(subCtx, promptID, kind)
	if err != nil {
		cancel()
		return nil, failure.Transient("watch", err)
	}
	initial, err := u.State(ctx, identity, promptID, kind)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan entity.MembershipState, 1)
	out <- initial
	if u.metrics != nil {
		u.metrics.SubscriberOpened()
	}
	go func() {
		defer close(out)
		defer cancel()
		if u.metrics != nil {
			defer u.metrics.SubscriberClosed()
		}
		last := initial
		for change := range changes {
			next := last
			if userID == "" {
				next.Count = change.Count
				next.Revision = change.Revision
			} else {
				snap, err := u.snapshot(subCtx, userID, promptID, kind)
				if err != nil {
					if subCtx.Err() == nil {
						u.logger.Warnf("live state of prompt %s for %s unavailable, closing stream: %v", promptID, userID, err)
					}
					return
				}
				next = snap
			}
			if next.Revision <= last.Revision {
				continue
			}
			last = next
			offerLatest(out, last)
		}
	}()
	return out, nil
}

// offerLatest sends s on ch, replacing an unread state if ch is full.
func offerLatest(ch chan entity.MembershipState, s entity.MembershipState) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Counts returns both counters of promptID, read through the cache when one is set.
func (u *ReactionUsecase) Counts(ctx context.Context, promptID string) (*entity.PromptCounts, error) {
	if u.cache != nil {
		cached, ok, err := u.cache.GetCounts(ctx, promptID)
		if err != nil {
			u.logger.Warnf("counts cache read failed for prompt %s: %v", promptID, err)
		} else if ok {
			return cached, nil
		}
	}

	v, err, _ := u.countsGroup.Do(promptID, func() (interface{}, error) {
		counts, err := u.prompts.GetPromptCounts(ctx, promptID)
		if err != nil {
			return nil, err
		}
		if u.cache != nil {
			if err := u.cache.SetCounts(ctx, counts); err != nil {
				u.logger.Warnf("counts cache write failed for prompt %s: %v", promptID, err)
			}
		}
		return counts, nil
	})
	if err != nil {
		return nil, promptFailure("counts", promptID, err)
	}
	counts := *v.(*entity.PromptCounts)
	return &counts, nil
}

// ListReacted returns the public prompts the caller holds kind on, newest reaction first.
// Anonymous and unknown callers get an empty list.
func (u *ReactionUsecase) ListReacted(ctx context.Context, identity string, kind entity.ReactionKind) ([]entity.ReactedPrompt, error) {
	userID, err := u.optionalCaller(ctx, identity)
	if err != nil {
		return nil, err
	}
	out := []entity.ReactedPrompt{}
	if userID == "" {
		return out, nil
	}

	records, err := u.reactions.ListByUser(ctx, userID, kind, u.listLimit)
	if err != nil {
		return nil, failure.Transient("list reacted", err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.PromptID)
	}
	prompts, err := u.prompts.GetPromptsByIDs(ctx, ids)
	if err != nil {
		return nil, failure.Transient("list reacted", err)
	}
	for _, r := range records {
		p, ok := prompts[r.PromptID]
		if !ok || !p.IsPublic {
			continue
		}
		out = append(out, entity.ReactedPrompt{Prompt: *p, ReactedAt: r.CreatedAt})
	}
	return out, nil
}
