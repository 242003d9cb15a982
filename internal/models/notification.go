package models

import "time"

// NotificationType tags what triggered a notification
type NotificationType string

const (
	NotificationFollow              NotificationType = "follow"
	NotificationFollowRequest       NotificationType = "follow-request"
	NotificationAcceptFollowRequest NotificationType = "accept-follow-request"
	NotificationLike                NotificationType = "like"
	NotificationComment             NotificationType = "comment"
	NotificationCommentReply        NotificationType = "comment-reply"
)

// Notification is fanned out by a primary mutation. The correlation ids
// locate it again when that mutation is reversed.
type Notification struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	RecipientID string           `json:"recipient_id" gorm:"size:128;not null;index"`
	ActorID     *string          `json:"actor_id,omitempty" gorm:"size:128;index"`
	Type        NotificationType `json:"type" gorm:"size:30;not null;index"`
	Message     string           `json:"message"`
	PostID      *string          `json:"post_id,omitempty" gorm:"size:36;index"`
	CommentID   *string          `json:"comment_id,omitempty" gorm:"size:36;index"`
	FollowID    *string          `json:"follow_id,omitempty" gorm:"size:36;index"`
	LikeID      *string          `json:"like_id,omitempty" gorm:"size:36;index"`
	IsRead      bool             `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Actor *UserCompact `json:"actor,omitempty" gorm:"-"`
}

// Correlation selects notifications by the record that triggered them.
// Exactly one field is expected to be set.
type Correlation struct {
	FollowID  string
	LikeID    string
	CommentID string
	PostID    string
}
