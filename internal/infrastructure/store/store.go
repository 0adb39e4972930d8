package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// CountsCacheStore keeps prompt counter projections in Redis, one hash per prompt.
type CountsCacheStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.ICountsCache = (*CountsCacheStore)(nil)

func NewCountsCacheStore(rdb *redis.Client, ttl time.Duration) *CountsCacheStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CountsCacheStore{rdb: rdb, ttl: ttl}
}

func countsKey(promptID string) string { return fmt.Sprintf("prompt:counts:%s", promptID) }

// setCountsScript writes the hash unless it already holds a newer revision.
// KEYS[1] key; ARGV revision, prompt id, like count, bookmark count, ttl in ms.
var setCountsScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'revision'))
if cur and cur > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'prompt_id', ARGV[2], 'like_count', ARGV[3], 'bookmark_count', ARGV[4], 'revision', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// GetCounts returns the cached counts. A miss or an unreadable entry reports false.
func (c *CountsCacheStore) GetCounts(ctx context.Context, promptID string) (*entity.PromptCounts, bool, error) {
	fields, err := c.rdb.HGetAll(ctx, countsKey(promptID)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	counts := entity.PromptCounts{PromptID: promptID}
	for name, dst := range map[string]*int64{
		"like_count":     &counts.LikeCount,
		"bookmark_count": &counts.BookmarkCount,
		"revision":       &counts.Revision,
	} {
		n, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return nil, false, nil
		}
		*dst = n
	}
	return &counts, true, nil
}

// SetCounts stores counts unless a newer revision is already cached. The compare and
// the write run as one script.
func (c *CountsCacheStore) SetCounts(ctx context.Context, counts *entity.PromptCounts) error {
	if counts == nil {
		return nil
	}
	keys := []string{countsKey(counts.PromptID)}
	err := setCountsScript.Run(ctx, c.rdb, keys,
		counts.Revision, counts.PromptID, counts.LikeCount, counts.BookmarkCount, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to cache counts for prompt %s: %w", counts.PromptID, err)
	}
	return nil
}

func (c *CountsCacheStore) InvalidateCounts(ctx context.Context, promptID string) error {
	return c.rdb.Del(ctx, countsKey(promptID)).Err()
}
