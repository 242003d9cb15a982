package models

import "time"

// Like marks a user's like on a post. Existence is the liked state.
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;index;uniqueIndex:idx_post_user_like"`
	UserID    string    `json:"user_id" gorm:"size:128;not null;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User *UserCompact `json:"user,omitempty" gorm:"-"`
}

// LikeResult is the outcome of a toggle
type LikeResult int

const (
	LikeAdded LikeResult = iota + 1
	LikeRemoved
)

func (r LikeResult) String() string {
	switch r {
	case LikeAdded:
		return "added"
	case LikeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// MarshalText renders the result as "added" or "removed"
func (r LikeResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
