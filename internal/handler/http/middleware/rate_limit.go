package middleware

import (
	"net/http"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
)

// RateLimiter applies lmt per client.
func RateLimiter(lmt *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpErr := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpErr != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: httpErr.Message, Code: dto.CodeRateLimited})
			return
		}
		c.Next()
	}
}
