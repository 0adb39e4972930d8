package contract

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// ICountsCache caches prompt counters for the read path.
type ICountsCache interface {
	GetCounts(ctx context.Context, promptID string) (*entity.PromptCounts, bool, error)
	SetCounts(ctx context.Context, counts *entity.PromptCounts) error
	InvalidateCounts(ctx context.Context, promptID string) error
}
