package models

import "time"

// Comment is a comment on a post. With ParentID set it is a reply to a
// top-level comment. Comments are soft-deleted only.
type Comment struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	PostID       string    `json:"post_id" gorm:"size:36;not null;index"`
	UserID       string    `json:"user_id" gorm:"size:128;not null;index"`
	ParentID     *string   `json:"parent_id,omitempty" gorm:"size:36;index"`
	Content      string    `json:"content"`
	RepliesCount int       `json:"replies_count" gorm:"not null;default:0"`
	IsDeleted    bool      `json:"-" gorm:"not null;default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`

	Author *UserCompact `json:"author,omitempty" gorm:"-"`
}

// IsReply reports whether the comment is a reply
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
