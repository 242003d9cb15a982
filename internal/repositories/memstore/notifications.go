package memstore

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type notificationRepo struct{ s *Store }

func notificationKey(n models.Notification) (time.Time, string) { return n.CreatedAt, n.ID }

func matches(ptr *string, want string) bool {
	return ptr != nil && *ptr == want
}

func (r notificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.notifications[n.ID]; ok {
			return repositories.ErrDuplicate
		}
		now := r.s.now()
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		n.UpdatedAt = now
		stored := *n
		stored.Actor = nil
		st.notifications[n.ID] = stored
		st.track(n.ID)
		return nil
	})
}

func (r notificationRepo) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	var out models.Notification
	err := r.s.read(ctx, func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r notificationRepo) DeleteByCorrelation(ctx context.Context, c models.Correlation) (int64, error) {
	var match func(models.Notification) bool
	switch {
	case c.FollowID != "":
		match = func(n models.Notification) bool { return matches(n.FollowID, c.FollowID) }
	case c.LikeID != "":
		match = func(n models.Notification) bool { return matches(n.LikeID, c.LikeID) }
	case c.CommentID != "":
		match = func(n models.Notification) bool { return matches(n.CommentID, c.CommentID) }
	case c.PostID != "":
		match = func(n models.Notification) bool { return matches(n.PostID, c.PostID) }
	default:
		return 0, errors.New("empty correlation")
	}
	var removed int64
	err := r.s.write(ctx, func(st *state) error {
		for id, n := range st.notifications {
			if match(n) {
				delete(st.notifications, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (r notificationRepo) GetByRecipientID(ctx context.Context, recipientID string, unreadOnly bool, page models.PageRequest) ([]models.Notification, int64, error) {
	var out []models.Notification
	var total int64
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.Notification
		for _, n := range st.notifications {
			if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
				continue
			}
			matched = append(matched, n)
		}
		total = int64(len(matched))
		newestFirst(st, matched, notificationKey)
		out = paginate(matched, page)
		return nil
	})
	return out, total, err
}

func (r notificationRepo) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.s.read(ctx, func(st *state) error {
		for _, n := range st.notifications {
			if n.RecipientID == recipientID && !n.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r notificationRepo) MarkAsRead(ctx context.Context, id string) error {
	return r.s.write(ctx, func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return nil
		}
		n.IsRead = true
		n.UpdatedAt = r.s.now()
		st.notifications[id] = n
		return nil
	})
}

func (r notificationRepo) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	var updated int64
	err := r.s.write(ctx, func(st *state) error {
		now := r.s.now()
		for id, n := range st.notifications {
			if n.RecipientID == recipientID && !n.IsRead {
				n.IsRead = true
				n.UpdatedAt = now
				st.notifications[id] = n
				updated++
			}
		}
		return nil
	})
	return updated, err
}

func (r notificationRepo) DeleteNotification(ctx context.Context, id string) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.notifications[id]; !ok {
			return repositories.ErrRecordNotFound
		}
		delete(st.notifications, id)
		return nil
	})
}

func (r notificationRepo) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	var removed int64
	err := r.s.write(ctx, func(st *state) error {
		for id, n := range st.notifications {
			if n.RecipientID == recipientID {
				delete(st.notifications, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
