package dto

import (
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// PromptURI binds the prompt id path parameter.
type PromptURI struct {
	PromptID string `uri:"promptID" binding:"required"`
}

// ReactionURI binds the prompt id and reaction kind path parameters.
type ReactionURI struct {
	PromptID string `uri:"promptID" binding:"required"`
	Kind     string `uri:"kind" binding:"required,reactionkind"`
}

// MembershipStateResponse is the body of a toggle and of a membership query.
type MembershipStateResponse struct {
	PromptID string `json:"prompt_id"`
	Kind     string `json:"kind"`
	Active   bool   `json:"active"`
	Count    int64  `json:"count"`
	Revision int64  `json:"revision"`
}

func ToMembershipStateResponse(s entity.MembershipState) MembershipStateResponse {
	return MembershipStateResponse{
		PromptID: s.PromptID,
		Kind:     string(s.Kind),
		Active:   s.Active,
		Count:    s.Count,
		Revision: s.Revision,
	}
}

// ToMembershipState converts a response body back into the domain type.
func (r MembershipStateResponse) ToMembershipState() entity.MembershipState {
	return entity.MembershipState{
		PromptID: r.PromptID,
		Kind:     entity.ReactionKind(r.Kind),
		Active:   r.Active,
		Count:    r.Count,
		Revision: r.Revision,
	}
}

// ReactionsResponse carries both counters and the caller's flags for a prompt.
type ReactionsResponse struct {
	PromptID      string `json:"prompt_id"`
	LikeCount     int64  `json:"like_count"`
	BookmarkCount int64  `json:"bookmark_count"`
	Revision      int64  `json:"revision"`
	Liked         bool   `json:"liked"`
	Bookmarked    bool   `json:"bookmarked"`
}

// PromptResponse is the DTO for a prompt.
type PromptResponse struct {
	ID            string  `json:"id"`
	AuthorID      string  `json:"author_id"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	LikeCount     int64   `json:"like_count"`
	BookmarkCount int64   `json:"bookmark_count"`
	CreatedAt     string  `json:"created_at"`
}

// ReactedPromptResponse is one entry of a /me/likes or /me/bookmarks listing.
type ReactedPromptResponse struct {
	Prompt    PromptResponse `json:"prompt"`
	ReactedAt string         `json:"reacted_at"`
}

// ReactedListResponse wraps a reacted listing.
type ReactedListResponse struct {
	Kind  string                  `json:"kind"`
	Items []ReactedPromptResponse `json:"items"`
}

func ToPromptResponse(p entity.Prompt) PromptResponse {
	return PromptResponse{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		Title:         p.Title,
		Description:   p.Description,
		LikeCount:     p.Count(entity.ReactionLike),
		BookmarkCount: p.Count(entity.ReactionBookmark),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

func ToReactedListResponse(kind entity.ReactionKind, items []entity.ReactedPrompt) ReactedListResponse {
	out := ReactedListResponse{Kind: string(kind), Items: make([]ReactedPromptResponse, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, ReactedPromptResponse{
			Prompt:    ToPromptResponse(item.Prompt),
			ReactedAt: item.ReactedAt.Format(time.RFC3339),
		})
	}
	return out
}
