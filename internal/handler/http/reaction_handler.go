package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/middleware"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
	"golang.org/x/sync/errgroup"
)

// ReactionHandlerInterface defines the methods for the reaction handler to allow interface-based dependency injection (for testing/mocking)
type ReactionHandlerInterface interface {
	ToggleReaction(*gin.Context)
	ToggleLike(*gin.Context)
	ToggleBookmark(*gin.Context)
	GetReactionState(*gin.Context)
	GetReactions(*gin.Context)
	ListLiked(*gin.Context)
	ListBookmarked(*gin.Context)
}

var _ ReactionHandlerInterface = (*ReactionHandler)(nil)

type ReactionHandler struct {
	reactionUsecase usecasecontract.IReactionUseCase
}

func NewReactionHandler(reactionUsecase usecasecontract.IReactionUseCase) *ReactionHandler {
	return &ReactionHandler{
		reactionUsecase: reactionUsecase,
	}
}

// ToggleReaction flips the caller's reaction of the kind named in the path.
func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	var uri dto.ReactionURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	h.toggle(c, uri.PromptID, entity.ReactionKind(uri.Kind))
}

func (h *ReactionHandler) ToggleLike(c *gin.Context) {
	var uri dto.PromptURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	h.toggle(c, uri.PromptID, entity.ReactionLike)
}

func (h *ReactionHandler) ToggleBookmark(c *gin.Context) {
	var uri dto.PromptURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	h.toggle(c, uri.PromptID, entity.ReactionBookmark)
}

func (h *ReactionHandler) toggle(c *gin.Context, promptID string, kind entity.ReactionKind) {
	state, err := h.reactionUsecase.Toggle(c.Request.Context(), middleware.Identity(c), promptID, kind)
	if err != nil {
		FailureHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToMembershipStateResponse(state))
}

// GetReactionState returns the caller's membership and the counter for one kind.
func (h *ReactionHandler) GetReactionState(c *gin.Context) {
	var uri dto.ReactionURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	state, err := h.reactionUsecase.State(c.Request.Context(), middleware.Identity(c), uri.PromptID, entity.ReactionKind(uri.Kind))
	if err != nil {
		FailureHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToMembershipStateResponse(state))
}

// GetReactions returns both counters and, for a signed-in caller, both flags.
func (h *ReactionHandler) GetReactions(c *gin.Context) {
	var uri dto.PromptURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	identity := middleware.Identity(c)

	var (
		counts     *entity.PromptCounts
		liked      bool
		bookmarked bool
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		counts, err = h.reactionUsecase.Counts(ctx, uri.PromptID)
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = h.reactionUsecase.IsActive(ctx, identity, uri.PromptID, entity.ReactionLike)
		return err
	})
	g.Go(func() error {
		var err error
		bookmarked, err = h.reactionUsecase.IsActive(ctx, identity, uri.PromptID, entity.ReactionBookmark)
		return err
	})
	if err := g.Wait(); err != nil {
		FailureHandler(c, err)
		return
	}

	SuccessHandler(c, http.StatusOK, dto.ReactionsResponse{
		PromptID:      counts.PromptID,
		LikeCount:     counts.LikeCount,
		BookmarkCount: counts.BookmarkCount,
		Revision:      counts.Revision,
		Liked:         liked,
		Bookmarked:    bookmarked,
	})
}

func (h *ReactionHandler) ListLiked(c *gin.Context) {
	h.listReacted(c, entity.ReactionLike)
}

func (h *ReactionHandler) ListBookmarked(c *gin.Context) {
	h.listReacted(c, entity.ReactionBookmark)
}

func (h *ReactionHandler) listReacted(c *gin.Context, kind entity.ReactionKind) {
	items, err := h.reactionUsecase.ListReacted(c.Request.Context(), middleware.Identity(c), kind)
	if err != nil {
		FailureHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToReactedListResponse(kind, items))
}
