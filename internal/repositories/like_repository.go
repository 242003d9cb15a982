package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// InsertLikeIfAbsent inserts the like unless one exists for the pair.
// A concurrent insert of the same pair blocks on the unique index until the
// other transaction finishes.
func (r *PostgresLikeRepository) InsertLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLike removes the like of the pair and returns it
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID string) (*models.Like, error) {
	var deleted []models.Like
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&deleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return &deleted[0], nil
}

// ListLikes retrieves the likes of a post, most recent first
func (r *PostgresLikeRepository) ListLikes(ctx context.Context, postID string, page models.PageRequest) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&likes).Error
	return likes, err
}

// LikedPostIDs reports which of postIDs the user has liked, in one query
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var liked []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		result[id] = true
	}
	return result, nil
}
