package models

import "time"

// Visibility controls who may see a post besides its owner
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Post is a piece of content owned by a user. A post with ParentPostID set
// is a share of another post.
type Post struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	UserID        string     `json:"user_id" gorm:"size:128;not null;index:idx_posts_user_created,priority:1"`
	Content       string     `json:"content"`
	Visibility    Visibility `json:"visibility" gorm:"size:20;not null;default:'public'"`
	LikesCount    int        `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int        `json:"comments_count" gorm:"not null;default:0"`
	ShareCount    int        `json:"share_count" gorm:"not null;default:0"`
	ParentPostID  *string    `json:"parent_post_id,omitempty" gorm:"size:36;index"`
	IsDeleted     bool       `json:"-" gorm:"not null;default:false;index"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index:idx_posts_user_created,priority:2"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Viewer-specific annotations, never persisted
	IsLiked    bool         `json:"is_liked" gorm:"-"`
	Author     *UserCompact `json:"author,omitempty" gorm:"-"`
	ParentPost *Post        `json:"parent_post,omitempty" gorm:"-"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string     `json:"content" validate:"required,min=1,max=2000"`
	Visibility Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// SharePostRequest defines the request body for sharing a post
type SharePostRequest struct {
	Content    string     `json:"content,omitempty" validate:"omitempty,max=2000"`
	Visibility Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content    *string     `json:"content,omitempty" validate:"omitempty,min=1,max=2000"`
	Visibility *Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}
