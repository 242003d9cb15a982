package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
)

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, translateError(err)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) DeleteByCorrelation(ctx context.Context, c models.Correlation) (int64, error) {
	q := r.db.WithContext(ctx)
	switch {
	case c.FollowID != "":
		q = q.Where("follow_id = ?", c.FollowID)
	case c.LikeID != "":
		q = q.Where("like_id = ?", c.LikeID)
	case c.CommentID != "":
		q = q.Where("comment_id = ?", c.CommentID)
	case c.PostID != "":
		q = q.Where("post_id = ?", c.PostID)
	default:
		return 0, errors.New("empty correlation")
	}
	res := q.Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, unreadOnly bool, page models.PageRequest) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
		if unreadOnly {
			q = q.Where("is_read = false")
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "updated_at": gorm.Expr("NOW()")}).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).
		Updates(map[string]any{"is_read": true, "updated_at": gorm.Expr("NOW()")})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
