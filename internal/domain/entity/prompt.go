package entity

import "time"

// Prompt is the reactable resource. Counters are written only by the reaction store.
type Prompt struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	AuthorID      string    `bson:"author_id" json:"author_id"`
	Title         string    `bson:"title" json:"title"`
	Description   *string   `bson:"description,omitempty" json:"description,omitempty"`
	IsPublic      bool      `bson:"is_public" json:"is_public"`
	LikeCount     int64     `bson:"like_count" json:"like_count"`
	BookmarkCount int64     `bson:"bookmark_count" json:"bookmark_count"`
	Revision      int64     `bson:"revision" json:"revision"`
	IsDeleted     bool      `bson:"is_deleted" json:"-"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Count returns the prompt's counter for kind, floored at zero.
func (p *Prompt) Count(kind ReactionKind) int64 {
	var n int64
	switch kind {
	case ReactionLike:
		n = p.LikeCount
	case ReactionBookmark:
		n = p.BookmarkCount
	}
	if n < 0 {
		return 0
	}
	return n
}

// PromptCounts is the counter projection of a prompt used for initial render.
type PromptCounts struct {
	PromptID      string `json:"prompt_id"`
	LikeCount     int64  `json:"like_count"`
	BookmarkCount int64  `json:"bookmark_count"`
	Revision      int64  `json:"revision"`
}

// ReactedPrompt is a prompt the caller holds a reaction on, with the reaction time.
type ReactedPrompt struct {
	Prompt    Prompt    `json:"prompt"`
	ReactedAt time.Time `json:"reacted_at"`
}
