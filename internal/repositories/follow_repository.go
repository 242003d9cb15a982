package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translateError(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) GetFollowForUpdate(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &follow, nil
}

func (r *PostgresFollowRepository) AcceptFollow(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("id = ? AND accepted = false", id).
		Updates(map[string]any{"accepted": true, "updated_at": gorm.Expr("NOW()")})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, "following_id = ? AND accepted = true", userID, page)
}

func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, "follower_id = ? AND accepted = true", userID, page)
}

func (r *PostgresFollowRepository) ListPending(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, "following_id = ? AND accepted = false", userID, page)
}

func (r *PostgresFollowRepository) list(ctx context.Context, cond, userID string, page models.PageRequest) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where(cond, userID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&follows).Error
	return follows, err
}
