package entity

import (
	"time"
)

// User represents a registered user in the system.
// ExternalID is the subject issued by the identity provider.
type User struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	ExternalID  string    `bson:"external_id" json:"-"`
	Username    string    `bson:"username" json:"username"`
	DisplayName *string   `bson:"display_name,omitempty" json:"display_name,omitempty"`
	AvatarURL   *string   `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// UserProfile carries the identity provider's view of a user, used to create or
// refresh the local record.
type UserProfile struct {
	Username    string
	DisplayName *string
	AvatarURL   *string
}
