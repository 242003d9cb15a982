package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
)

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return translateError(r.db.WithContext(ctx).Create(post).Error)
}

// GetPostByID retrieves a post by ID, deleted or not
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// GetPostsByIDs loads every listed post in one query
func (r *PostgresPostRepository) GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error) {
	result := make(map[string]models.Post, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

// UpdatePost updates the content and visibility of a post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = false", post.ID).
		Select("content", "visibility", "updated_at").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SoftDeletePost marks a live post as deleted
func (r *PostgresPostRepository) SoftDeletePost(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]any{"is_deleted": true, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFeed returns the viewer's own posts plus public posts of public users
// the viewer follows with an accepted edge, newest first.
func (r *PostgresPostRepository) ListFeed(ctx context.Context, viewerID string, page models.PageRequest) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Table("posts AS p").
		Select("p.*").
		Joins("JOIN users AS u ON u.id = p.user_id").
		Joins("LEFT JOIN follows AS f ON f.following_id = p.user_id AND f.follower_id = ? AND f.accepted = true", viewerID).
		Where("p.is_deleted = false").
		Where("(f.id IS NOT NULL OR p.user_id = ?)", viewerID).
		Where("(p.user_id = ? OR (u.is_private = false AND p.visibility = ?))", viewerID, models.VisibilityPublic).
		Order("p.created_at DESC, p.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&posts).Error
	return posts, err
}

// ListByOwner returns the live posts of one user, newest first
func (r *PostgresPostRepository) ListByOwner(ctx context.Context, ownerID string, publicOnly bool, page models.PageRequest) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Where("user_id = ? AND is_deleted = false", ownerID)
	if publicOnly {
		q = q.Where("visibility = ?", models.VisibilityPublic)
	}
	err := q.Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&posts).Error
	return posts, err
}
