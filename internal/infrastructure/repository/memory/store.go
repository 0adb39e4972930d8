// Package memory is a process-local implementation of the user, prompt and reaction
// repositories. Each prompt owns a lock that covers its membership sets and counters, so
// toggles on different prompts never contend and toggles on one prompt are serialized.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

type promptShard struct {
	mu      sync.Mutex
	prompt  entity.Prompt
	deleted bool
	members map[entity.ReactionKind]map[string]entity.Reaction // kind -> userID -> record
}

// Store holds users, prompts and reactions in memory.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byExtID map[string]string
	prompts map[string]*promptShard
	idGen   contract.IUUIDGenerator
}

var (
	_ contract.IUserRepository     = (*Store)(nil)
	_ contract.IPromptRepository   = (*Store)(nil)
	_ contract.IReactionRepository = (*Store)(nil)
)

// NewStore returns an empty store that names new records with idGen.
func NewStore(idGen contract.IUUIDGenerator) *Store {
	return &Store{
		users:   make(map[string]*entity.User),
		byExtID: make(map[string]string),
		prompts: make(map[string]*promptShard),
		idGen:   idGen,
	}
}

// PutPrompt inserts or replaces a prompt. Existing membership records are kept.
func (s *Store) PutPrompt(p entity.Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.prompts[p.ID]; ok {
		sh.mu.Lock()
		sh.prompt = p
		sh.mu.Unlock()
		return
	}
	s.prompts[p.ID] = &promptShard{
		prompt: p,
		members: map[entity.ReactionKind]map[string]entity.Reaction{
			entity.ReactionLike:     {},
			entity.ReactionBookmark: {},
		},
	}
}

// Seed is the on-disk format accepted by LoadSeed.
type Seed struct {
	Users   []SeedUser      `json:"users"`
	Prompts []entity.Prompt `json:"prompts"`
}

// SeedUser is a user as written in a seed file.
type SeedUser struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
}

// LoadSeed reads a JSON Seed from r into the store.
func (s *Store) LoadSeed(ctx context.Context, r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}
	for _, u := range seed.Users {
		user := &entity.User{ID: u.ID, ExternalID: u.ExternalID, Username: u.Username}
		if _, err := s.UpsertUser(ctx, user); err != nil {
			return err
		}
	}
	for _, p := range seed.Prompts {
		s.PutPrompt(p)
	}
	return nil
}

func (s *Store) shard(promptID string) (*promptShard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.prompts[promptID]
	return sh, ok
}

// --- users ---

// GetUserByID retrieves a user by local id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, contract.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByExternalID resolves an identity provider subject.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byExtID[externalID]
	if !ok {
		return nil, contract.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// UpsertUser creates or refreshes the user keyed by user.ExternalID.
func (s *Store) UpsertUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.ExternalID == "" {
		return nil, fmt.Errorf("upsert user: external id is required")
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byExtID[user.ExternalID]; ok {
		existing := s.users[id]
		existing.Username = user.Username
		existing.DisplayName = user.DisplayName
		existing.AvatarURL = user.AvatarURL
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}
	u := *user
	if u.ID == "" {
		u.ID = s.idGen.NewUUID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = &u
	s.byExtID[u.ExternalID] = u.ID
	cp := u
	return &cp, nil
}

// --- prompts ---

// GetPromptByID retrieves a live prompt.
func (s *Store) GetPromptByID(ctx context.Context, promptID string) (*entity.Prompt, error) {
	sh, ok := s.shard(promptID)
	if !ok {
		return nil, contract.ErrPromptNotFound
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.deleted {
		return nil, contract.ErrPromptNotFound
	}
	p := sh.prompt
	return &p, nil
}

// GetPromptsByIDs returns the live prompts among promptIDs keyed by id.
func (s *Store) GetPromptsByIDs(ctx context.Context, promptIDs []string) (map[string]*entity.Prompt, error) {
	out := make(map[string]*entity.Prompt, len(promptIDs))
	for _, id := range promptIDs {
		p, err := s.GetPromptByID(ctx, id)
		if err != nil {
			continue
		}
		out[id] = p
	}
	return out, nil
}

// GetPromptCounts returns the counter projection of a prompt.
func (s *Store) GetPromptCounts(ctx context.Context, promptID string) (*entity.PromptCounts, error) {
	p, err := s.GetPromptByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	return countsOf(p), nil
}

// DeletePrompt removes the prompt and its membership records.
func (s *Store) DeletePrompt(ctx context.Context, promptID string) error {
	s.mu.Lock()
	sh, ok := s.prompts[promptID]
	if ok {
		delete(s.prompts, promptID)
	}
	s.mu.Unlock()
	if !ok {
		return contract.ErrPromptNotFound
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.deleted {
		return contract.ErrPromptNotFound
	}
	sh.deleted = true
	clearMembers(sh)
	return nil
}

// --- reactions ---

// Toggle flips (userID, promptID, kind) under the prompt's lock.
func (s *Store) Toggle(ctx context.Context, userID, promptID string, kind entity.ReactionKind, now time.Time) (entity.ToggleOutcome, error) {
	if err := ctx.Err(); err != nil {
		return entity.ToggleOutcome{}, err
	}
	sh, ok := s.shard(promptID)
	if !ok {
		return entity.ToggleOutcome{}, contract.ErrPromptNotFound
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.deleted {
		return entity.ToggleOutcome{}, contract.ErrPromptNotFound
	}
	members, ok := sh.members[kind]
	if !ok {
		return entity.ToggleOutcome{}, fmt.Errorf("toggle: unknown reaction kind %q", kind)
	}

	var active bool
	if _, exists := members[userID]; exists {
		delete(members, userID)
		adjustCounter(&sh.prompt, kind, -1)
	} else {
		members[userID] = entity.Reaction{
			ID:        s.idGen.NewUUID(),
			UserID:    userID,
			PromptID:  promptID,
			Kind:      kind,
			CreatedAt: now,
		}
		adjustCounter(&sh.prompt, kind, 1)
		active = true
	}
	sh.prompt.Revision++
	sh.prompt.UpdatedAt = now

	return entity.ToggleOutcome{
		Active:   active,
		Count:    sh.prompt.Count(kind),
		Revision: sh.prompt.Revision,
	}, nil
}

// IsMember reports whether the record exists. A missing prompt has no members.
func (s *Store) IsMember(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (bool, error) {
	sh, ok := s.shard(promptID)
	if !ok {
		return false, nil
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, exists := sh.members[kind][userID]
	return exists && !sh.deleted, nil
}

// Snapshot reads userID's flag together with the counter and revision it belongs to,
// all under the prompt's lock.
func (s *Store) Snapshot(ctx context.Context, userID, promptID string, kind entity.ReactionKind) (entity.MembershipState, error) {
	sh, ok := s.shard(promptID)
	if !ok {
		return entity.MembershipState{}, contract.ErrPromptNotFound
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.deleted {
		return entity.MembershipState{}, contract.ErrPromptNotFound
	}
	members, ok := sh.members[kind]
	if !ok {
		return entity.MembershipState{}, fmt.Errorf("snapshot: unknown reaction kind %q", kind)
	}
	_, active := members[userID]
	return entity.MembershipState{
		PromptID: promptID,
		Kind:     kind,
		Active:   active,
		Count:    sh.prompt.Count(kind),
		Revision: sh.prompt.Revision,
	}, nil
}

// ListByUser returns userID's records of kind, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, kind entity.ReactionKind, limit int) ([]entity.Reaction, error) {
	s.mu.RLock()
	shards := make([]*promptShard, 0, len(s.prompts))
	for _, sh := range s.prompts {
		shards = append(shards, sh)
	}
	s.mu.RUnlock()

	var out []entity.Reaction
	for _, sh := range shards {
		sh.mu.Lock()
		if r, ok := sh.members[kind][userID]; ok && !sh.deleted {
			out = append(out, r)
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteByPrompt drops every membership record on promptID. Counters are left alone;
// callers pair this with prompt removal.
func (s *Store) DeleteByPrompt(ctx context.Context, promptID string) (int64, error) {
	sh, ok := s.shard(promptID)
	if !ok {
		return 0, nil
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return clearMembers(sh), nil
}

func clearMembers(sh *promptShard) int64 {
	var n int64
	for kind, members := range sh.members {
		n += int64(len(members))
		sh.members[kind] = map[string]entity.Reaction{}
	}
	return n
}

func adjustCounter(p *entity.Prompt, kind entity.ReactionKind, delta int64) {
	switch kind {
	case entity.ReactionLike:
		p.LikeCount = floorZero(p.LikeCount + delta)
	case entity.ReactionBookmark:
		p.BookmarkCount = floorZero(p.BookmarkCount + delta)
	}
}

func floorZero(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func countsOf(p *entity.Prompt) *entity.PromptCounts {
	return &entity.PromptCounts{
		PromptID:      p.ID,
		LikeCount:     p.Count(entity.ReactionLike),
		BookmarkCount: p.Count(entity.ReactionBookmark),
		Revision:      p.Revision,
	}
}
