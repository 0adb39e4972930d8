package usecase

import (
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// JWTService defines the interface for JWT operations.
type JWTService interface {
	GenerateAccessToken(externalID, username string) (string, error)
	ParseAccessToken(token string) (*entity.Claims, error)
}
