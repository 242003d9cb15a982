package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/nano-midea/engagement/internal/models"
)

var (
	// ErrRecordNotFound is returned when a lookup by key matches nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate record")
	// ErrTxConflict is returned when a transaction kept losing to concurrent writers.
	ErrTxConflict = errors.New("transaction conflict")
)

// CounterField names one denormalized aggregate column
type CounterField int

const (
	UserFollowers CounterField = iota + 1
	UserFollowing
	UserPosts
	PostLikes
	PostComments
	PostShares
	CommentReplies
)

func (f CounterField) String() string {
	switch f {
	case UserFollowers:
		return "users.followers_count"
	case UserFollowing:
		return "users.following_count"
	case UserPosts:
		return "users.posts_count"
	case PostLikes:
		return "posts.likes_count"
	case PostComments:
		return "posts.comments_count"
	case PostShares:
		return "posts.share_count"
	case CommentReplies:
		return "comments.replies_count"
	default:
		return "unknown"
	}
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// SearchUsers matches query case-insensitively against username and
	// display name, ordered by username.
	SearchUsers(ctx context.Context, query string, page models.PageRequest) ([]models.User, error)
}

// PostRepository defines the interface for post data operations.
// Lookups by id return soft-deleted posts too; listings never do.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	SoftDeletePost(ctx context.Context, id string) (bool, error)
	ListFeed(ctx context.Context, viewerID string, page models.PageRequest) ([]models.Post, error)
	ListByOwner(ctx context.Context, ownerID string, publicOnly bool, page models.PageRequest) ([]models.Post, error)
}

// FollowRepository defines the interface for follow edge operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	// GetFollowForUpdate locks the edge until the surrounding transaction ends.
	GetFollowForUpdate(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	// AcceptFollow flips a pending edge to accepted. It reports false when
	// the edge is gone or was already accepted.
	AcceptFollow(ctx context.Context, id string) (bool, error)
	DeleteFollow(ctx context.Context, id string) (bool, error)
	ListFollowers(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error)
	ListPending(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error)
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// InsertLikeIfAbsent reports whether a row was inserted.
	InsertLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error)
	// DeleteLike returns the removed like, or nil when there was none.
	DeleteLike(ctx context.Context, postID, userID string) (*models.Like, error)
	ListLikes(ctx context.Context, postID string, page models.PageRequest) ([]models.Like, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id, content string) error
	// SoftDeleteComment reports false when the comment was already deleted.
	SoftDeleteComment(ctx context.Context, id string) (bool, error)
	ListTopLevel(ctx context.Context, postID string, page models.PageRequest) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID string, page models.PageRequest) ([]models.Comment, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*models.Notification, error)
	DeleteByCorrelation(ctx context.Context, c models.Correlation) (int64, error)
	GetByRecipientID(ctx context.Context, recipientID string, unreadOnly bool, page models.PageRequest) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	DeleteNotification(ctx context.Context, id string) error
	DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error)
}

// CounterRepository adjusts denormalized counters in place
type CounterRepository interface {
	// Adjust adds delta to the field of the row with the given id, clamping
	// the result at zero. ErrRecordNotFound when the row does not exist.
	Adjust(ctx context.Context, field CounterField, id string, delta int) error
}

// Store is the unit of work the services run against. Repositories taken
// from the Store passed to a Transaction callback share that transaction.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Follows() FollowRepository
	Likes() LikeRepository
	Comments() CommentRepository
	Notifications() NotificationRepository
	Counters() CounterRepository

	// Transaction runs fn atomically. Returning an error rolls back every
	// write made through tx.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
