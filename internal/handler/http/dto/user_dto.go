package dto

import (
	"time"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
)

// SyncUserRequest is the identity provider profile the client forwards on sign-in.
type SyncUserRequest struct {
	Username    string  `json:"username" binding:"omitempty,min=2,max=64,username"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=128"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,http_url"`
}

// UserResponse is the DTO for a user.
type UserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// converts an entity.User to a UserResponse DTO.
func ToUserResponse(user entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}
