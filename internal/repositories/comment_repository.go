package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
)

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translateError(r.db.WithContext(ctx).Create(comment).Error)
}

// GetCommentByID retrieves a comment by ID, deleted or not
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translateError(err)
	}
	return &comment, nil
}

// UpdateCommentContent replaces the content of a live comment
func (r *PostgresCommentRepository) UpdateCommentContent(ctx context.Context, id, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]any{"content": content, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SoftDeleteComment flags a live comment as deleted
func (r *PostgresCommentRepository) SoftDeleteComment(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]any{"is_deleted": true, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListTopLevel retrieves live top-level comments of a post, newest first
func (r *PostgresCommentRepository) ListTopLevel(ctx context.Context, postID string, page models.PageRequest) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL AND is_deleted = false", postID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&comments).Error
	return comments, err
}

// ListReplies retrieves live replies to a comment, newest first
func (r *PostgresCommentRepository) ListReplies(ctx context.Context, parentID string, page models.PageRequest) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_deleted = false", parentID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&comments).Error
	return comments, err
}
