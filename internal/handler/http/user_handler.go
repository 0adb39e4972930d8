package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/middleware"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

// UserHandlerInterface defines the methods for user handler to allow interface-based dependency injection (for testing/mocking)
type UserHandlerInterface interface {
	SyncCurrentUser(*gin.Context)
	GetCurrentUser(*gin.Context)
}

// Ensure UserHandler implements UserHandlerInterface
var _ UserHandlerInterface = (*UserHandler)(nil)

type UserHandler struct {
	userUsecase usecasecontract.IUserUseCase
}

func NewUserHandler(userUsecase usecasecontract.IUserUseCase) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
	}
}

// SyncCurrentUser mirrors the identity provider profile of the caller into the local store.
// The body is optional; without it the token's username is used.
func (h *UserHandler) SyncCurrentUser(c *gin.Context) {
	var req dto.SyncUserRequest
	if c.Request.ContentLength != 0 {
		if err := BindAndValidate(c, &req); err != nil {
			return
		}
	}
	if req.Username == "" {
		req.Username = c.GetString(middleware.UsernameKey)
	}

	user, err := h.userUsecase.SyncCaller(c.Request.Context(), middleware.Identity(c), entity.UserProfile{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		FailureHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}

// GetCurrentUser returns the local record of the caller.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.userUsecase.ResolveCaller(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		FailureHandler(c, err)
		return
	}
	SuccessHandler(c, http.StatusOK, dto.ToUserResponse(*user))
}
