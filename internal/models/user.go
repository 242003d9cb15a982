package models

import "time"

// User is a profile in the social graph. ID is the identity-provider subject.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:128"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex"`
	DisplayName    string    `json:"display_name" gorm:"size:100"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	IsPrivate      bool      `json:"is_private" gorm:"default:false"`
	FollowersCount int       `json:"followers_count" gorm:"not null;default:0"`
	FollowingCount int       `json:"following_count" gorm:"not null;default:0"`
	PostsCount     int       `json:"posts_count" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCompact is the author/actor shape embedded in listings
type UserCompact struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// ToCompact converts a user to its compact form
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsPrivate:   u.IsPrivate,
	}
}

// CreateUserRequest provisions a profile for the authenticated subject
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=50"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	IsPrivate   bool   `json:"is_private"`
}

// UpdateUserRequest defines the request body for updating the caller's profile
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}
