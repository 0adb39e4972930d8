package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/usecase"
)

// Context keys set by the auth middleware.
const (
	IdentityKey = "identity"
	UsernameKey = "username"
)

// Browsers cannot set headers on a WebSocket handshake, so upgrades may carry the
// token in the access_token query parameter instead.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" && c.IsWebsocket() {
		return c.Query("access_token")
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// AuthMiddleWare rejects requests without a valid bearer token and stores the caller's
// identity in the gin context.
func AuthMiddleWare(jwtService usecase.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authorization header required", Code: dto.CodeUnauthenticated})
			return
		}
		claims, err := jwtService.ParseAccessToken(token)
		if err != nil || claims.ExternalID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired token", Code: dto.CodeUnauthenticated})
			return
		}
		c.Set(IdentityKey, claims.ExternalID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// OptionalAuth sets the caller's identity when a valid token is present and lets the
// request through as anonymous otherwise.
func OptionalAuth(jwtService usecase.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwtService.ParseAccessToken(token); err == nil && claims.ExternalID != "" {
				c.Set(IdentityKey, claims.ExternalID)
				c.Set(UsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// Identity returns the caller's identity, or "" for anonymous requests.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}
