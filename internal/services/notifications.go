package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationDispatcher creates notifications as a side effect of other
// components and retracts them by correlation id. It also serves the
// recipient's own reads and read-state changes.
type NotificationDispatcher struct {
	store  repositories.Store
	logger *zap.Logger
	pager  pager
}

// NewNotificationDispatcher creates a NotificationDispatcher
func NewNotificationDispatcher(store repositories.Store, logger *zap.Logger, p pager) *NotificationDispatcher {
	return &NotificationDispatcher{
		store:  store,
		logger: logger.Named("notification_dispatcher"),
		pager:  p,
	}
}

// Notify persists n inside tx
func (d *NotificationDispatcher) Notify(ctx context.Context, tx repositories.Store, n *models.Notification) error {
	const op = "notifications/Notify"

	if strings.TrimSpace(n.RecipientID) == "" || n.Type == "" {
		return fail(op, apperrors.ErrInvalidArgument, "notification needs a recipient and a type")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.IsRead = false

	return tx.Notifications().CreateNotification(ctx, n)
}

// RetractForFollow deletes every notification correlated to a follow edge
func (d *NotificationDispatcher) RetractForFollow(ctx context.Context, tx repositories.Store, followID string) error {
	return d.retract(ctx, tx, models.Correlation{FollowID: followID})
}

// RetractForLike deletes every notification correlated to a like
func (d *NotificationDispatcher) RetractForLike(ctx context.Context, tx repositories.Store, likeID string) error {
	return d.retract(ctx, tx, models.Correlation{LikeID: likeID})
}

// RetractForPost deletes every notification that points at a post
func (d *NotificationDispatcher) RetractForPost(ctx context.Context, tx repositories.Store, postID string) error {
	return d.retract(ctx, tx, models.Correlation{PostID: postID})
}

// RetractForComment deletes every notification correlated to a comment
func (d *NotificationDispatcher) RetractForComment(ctx context.Context, tx repositories.Store, commentID string) error {
	return d.retract(ctx, tx, models.Correlation{CommentID: commentID})
}

func (d *NotificationDispatcher) retract(ctx context.Context, tx repositories.Store, c models.Correlation) error {
	removed, err := tx.Notifications().DeleteByCorrelation(ctx, c)
	if err != nil {
		return err
	}
	d.logger.Debug("Notifications retracted",
		zap.String("follow_id", c.FollowID),
		zap.String("like_id", c.LikeID),
		zap.String("comment_id", c.CommentID),
		zap.String("post_id", c.PostID),
		zap.Int64("removed", removed))
	return nil
}

// List returns a page of the recipient's notifications, newest first
func (d *NotificationDispatcher) List(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, models.PageMeta, error) {
	return d.list(ctx, "notifications/List", recipientID, false, page, limit)
}

// ListUnread returns a page of the recipient's unread notifications
func (d *NotificationDispatcher) ListUnread(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, models.PageMeta, error) {
	return d.list(ctx, "notifications/ListUnread", recipientID, true, page, limit)
}

func (d *NotificationDispatcher) list(ctx context.Context, op, recipientID string, unreadOnly bool, page, limit int) ([]models.Notification, models.PageMeta, error) {
	lg := d.logger.With(zap.String("op", op), zap.String("recipient_id", recipientID))

	if recipientID == "" {
		return nil, models.PageMeta{}, fail(op, apperrors.ErrInvalidArgument, "recipient is required")
	}
	req, err := d.pager.request(op, page, limit)
	if err != nil {
		return nil, models.PageMeta{}, err
	}

	items, total, err := d.store.Notifications().GetByRecipientID(ctx, recipientID, unreadOnly, req)
	if err != nil {
		return nil, models.PageMeta{}, failure(lg, op, err)
	}

	actorIDs := make([]string, 0, len(items))
	for _, n := range items {
		if n.ActorID != nil {
			actorIDs = append(actorIDs, *n.ActorID)
		}
	}
	actors, err := compactUsers(ctx, d.store, actorIDs)
	if err != nil {
		return nil, models.PageMeta{}, failure(lg, op, err)
	}
	for i := range items {
		if items[i].ActorID != nil {
			items[i].Actor = compactPtr(actors, *items[i].ActorID)
		}
	}

	return items, models.NewPageMeta(req, total), nil
}

// UnreadCount returns how many notifications the recipient has not read
func (d *NotificationDispatcher) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	const op = "notifications/UnreadCount"

	if recipientID == "" {
		return 0, fail(op, apperrors.ErrInvalidArgument, "recipient is required")
	}
	count, err := d.store.Notifications().GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, failure(d.logger.With(zap.String("op", op)), op, err)
	}
	return count, nil
}

// Get returns one notification of the recipient. Notifications of other
// recipients are reported as missing.
func (d *NotificationDispatcher) Get(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	const op = "notifications/Get"
	lg := d.logger.With(zap.String("op", op), zap.String("notification_id", id))

	n, err := d.owned(ctx, d.store, op, id, recipientID)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if n.ActorID != nil {
		actors, err := compactUsers(ctx, d.store, []string{*n.ActorID})
		if err != nil {
			return nil, failure(lg, op, err)
		}
		n.Actor = compactPtr(actors, *n.ActorID)
	}
	return n, nil
}

func (d *NotificationDispatcher) owned(ctx context.Context, store repositories.Store, op, id, recipientID string) (*models.Notification, error) {
	if id == "" || recipientID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "notification id and recipient are required")
	}
	n, err := store.Notifications().GetNotificationByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "notification not found")
		}
		return nil, err
	}
	if n.RecipientID != recipientID {
		return nil, fail(op, apperrors.ErrNotFound, "notification not found")
	}
	return n, nil
}

// MarkRead flags one of the recipient's notifications as read
func (d *NotificationDispatcher) MarkRead(ctx context.Context, id, recipientID string) error {
	const op = "notifications/MarkRead"

	err := d.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := d.owned(ctx, tx, op, id, recipientID); err != nil {
			return err
		}
		return tx.Notifications().MarkAsRead(ctx, id)
	})
	return failure(d.logger.With(zap.String("op", op)), op, err)
}

// MarkAllRead flags every unread notification of the recipient as read
func (d *NotificationDispatcher) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	const op = "notifications/MarkAllRead"

	if recipientID == "" {
		return 0, fail(op, apperrors.ErrInvalidArgument, "recipient is required")
	}
	updated, err := d.store.Notifications().MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, failure(d.logger.With(zap.String("op", op)), op, err)
	}
	return updated, nil
}

// Delete removes one of the recipient's notifications
func (d *NotificationDispatcher) Delete(ctx context.Context, id, recipientID string) error {
	const op = "notifications/Delete"

	err := d.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := d.owned(ctx, tx, op, id, recipientID); err != nil {
			return err
		}
		if err := tx.Notifications().DeleteNotification(ctx, id); err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "notification not found")
			}
			return err
		}
		return nil
	})
	return failure(d.logger.With(zap.String("op", op)), op, err)
}

// DeleteAll removes every notification of the recipient
func (d *NotificationDispatcher) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	const op = "notifications/DeleteAll"

	if recipientID == "" {
		return 0, fail(op, apperrors.ErrInvalidArgument, "recipient is required")
	}
	removed, err := d.store.Notifications().DeleteAllForRecipient(ctx, recipientID)
	if err != nil {
		return 0, failure(d.logger.With(zap.String("op", op)), op, err)
	}
	return removed, nil
}
