package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// PostgresCounterRepository implements CounterRepository for PostgreSQL
type PostgresCounterRepository struct {
	db *gorm.DB
}

// NewPostgresCounterRepository creates a new PostgresCounterRepository
func NewPostgresCounterRepository(db *gorm.DB) *PostgresCounterRepository {
	return &PostgresCounterRepository{db: db}
}

func counterColumn(field CounterField) (table, column string, err error) {
	switch field {
	case UserFollowers:
		return "users", "followers_count", nil
	case UserFollowing:
		return "users", "following_count", nil
	case UserPosts:
		return "users", "posts_count", nil
	case PostLikes:
		return "posts", "likes_count", nil
	case PostComments:
		return "posts", "comments_count", nil
	case PostShares:
		return "posts", "share_count", nil
	case CommentReplies:
		return "comments", "replies_count", nil
	default:
		return "", "", fmt.Errorf("unknown counter field %d", field)
	}
}

// Adjust is a single UPDATE, so the row lock it takes serializes
// concurrent adjustments of the same counter.
func (r *PostgresCounterRepository) Adjust(ctx context.Context, field CounterField, id string, delta int) error {
	table, column, err := counterColumn(field)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Table(table).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
