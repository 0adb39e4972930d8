package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/contract"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
)

// ErrorHandler centralizes error handling for HTTP responses
func ErrorHandler(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message, Code: code})
}

// SuccessHandler centralizes success responses
func SuccessHandler(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageHandler centralizes message responses
func MessageHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// BindAndValidate binds JSON request and validates it
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorHandler(c, http.StatusBadRequest, dto.CodeBadRequest, err.Error())
		return err
	}
	return nil
}

// BindURI binds path parameters and validates them
func BindURI(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindUri(req); err != nil {
		ErrorHandler(c, http.StatusBadRequest, dto.CodeBadRequest, err.Error())
		return err
	}
	return nil
}

// failureResponse picks the status and body for each failure case.
type failureResponse struct {
	status  int
	message string
}

func (r *failureResponse) VisitUnauthenticated(f *failure.UnauthenticatedError) {
	r.status = http.StatusUnauthorized
	r.message = f.Error()
}

func (r *failureResponse) VisitNotFound(f *failure.NotFoundError) {
	r.status = http.StatusNotFound
	r.message = f.Error()
}

func (r *failureResponse) VisitTransient(*failure.TransientError) {
	r.status = http.StatusServiceUnavailable
	r.message = "temporarily unavailable, try again"
}

// FailureHandler writes err using the reaction failure taxonomy. Authorization and
// validation errors from the use cases are reported outside it.
func FailureHandler(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contract.ErrForbidden):
		ErrorHandler(c, http.StatusForbidden, dto.CodeForbidden, err.Error())
		return
	case errors.Is(err, usecase.ErrInvalidProfile):
		ErrorHandler(c, http.StatusBadRequest, dto.CodeBadRequest, err.Error())
		return
	}
	f := failure.Classify(err)
	resp := &failureResponse{}
	f.Accept(resp)
	if f.Kind() == failure.KindTransient {
		_ = c.Error(err)
	}
	ErrorHandler(c, resp.status, string(f.Kind()), resp.message)
}
