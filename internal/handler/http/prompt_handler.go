package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/middleware"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

type PromptHandler struct {
	promptUsecase usecasecontract.IPromptUseCase
}

func NewPromptHandler(promptUsecase usecasecontract.IPromptUseCase) *PromptHandler {
	return &PromptHandler{promptUsecase: promptUsecase}
}

// DeletePrompt removes a prompt and every reaction on it.
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	var uri dto.PromptURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	if err := h.promptUsecase.DeletePrompt(c.Request.Context(), middleware.Identity(c), uri.PromptID); err != nil {
		FailureHandler(c, err)
		return
	}
	MessageHandler(c, http.StatusOK, "Prompt deleted successfully")
}
