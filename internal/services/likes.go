package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxToggleAttempts bounds how often a toggle restarts after the like it
// meant to remove was removed by a concurrent toggle first.
const maxToggleAttempts = 3

var errLikeVanished = errors.New("like removed concurrently")

// EngagementLedger toggles likes on posts
type EngagementLedger struct {
	store    repositories.Store
	counters *CounterLedger
	notifier *NotificationDispatcher
	recorder activity.Recorder
	logger   *zap.Logger
	pager    pager
}

// NewEngagementLedger creates an EngagementLedger
func NewEngagementLedger(
	store repositories.Store,
	counters *CounterLedger,
	notifier *NotificationDispatcher,
	recorder activity.Recorder,
	logger *zap.Logger,
	p pager,
) *EngagementLedger {
	return &EngagementLedger{
		store:    store,
		counters: counters,
		notifier: notifier,
		recorder: recorder,
		logger:   logger.Named("like_service"),
		pager:    p,
	}
}

// ToggleLike likes the post when userID has not liked it yet and unlikes it
// otherwise. The direction is decided by the stored state, never by the
// caller: an insert that finds an existing like turns into a delete.
func (l *EngagementLedger) ToggleLike(ctx context.Context, postID, userID string) (models.LikeResult, error) {
	const op = "likes/ToggleLike"
	lg := l.logger.With(zap.String("op", op), zap.String("post_id", postID), zap.String("user_id", userID))

	if postID == "" || userID == "" {
		return 0, fail(op, apperrors.ErrInvalidArgument, "post and user are required")
	}

	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		result, likeID, err := l.toggleOnce(ctx, op, postID, userID)
		if errors.Is(err, errLikeVanished) {
			lg.Debug("Like vanished during toggle, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return 0, failure(lg, op, err)
		}

		action := activity.ActionLike
		if result == models.LikeRemoved {
			action = activity.ActionUnlike
		}
		activity.Emit(ctx, l.recorder, lg, activity.Event{
			Action: action, ActorID: userID, PostID: postID, LikeID: likeID,
		})
		lg.Info("Like toggled", zap.Stringer("result", result))
		return result, nil
	}

	lg.Warn("Like toggle kept racing")
	return 0, fail(op, apperrors.ErrConflict, "concurrent like toggles, try again")
}

func (l *EngagementLedger) toggleOnce(ctx context.Context, op, postID, userID string) (models.LikeResult, string, error) {
	var (
		result models.LikeResult
		likeID string
	)
	err := l.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := livePost(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		liker, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "user not found")
			}
			return err
		}

		like := &models.Like{ID: uuid.NewString(), PostID: postID, UserID: userID}
		inserted, err := tx.Likes().InsertLikeIfAbsent(ctx, like)
		if err != nil {
			return err
		}

		if inserted {
			if err := l.counters.Increment(ctx, tx, repositories.PostLikes, postID); err != nil {
				return err
			}
			if userID != post.UserID {
				if err := l.notifier.Notify(ctx, tx, &models.Notification{
					RecipientID: post.UserID,
					ActorID:     &userID,
					Type:        models.NotificationLike,
					Message:     fmt.Sprintf("%s liked your post", liker.Username),
					PostID:      &postID,
					LikeID:      &like.ID,
				}); err != nil {
					return err
				}
			}
			result, likeID = models.LikeAdded, like.ID
			return nil
		}

		removed, err := tx.Likes().DeleteLike(ctx, postID, userID)
		if err != nil {
			return err
		}
		if removed == nil {
			return errLikeVanished
		}
		if err := l.counters.Decrement(ctx, tx, repositories.PostLikes, postID); err != nil {
			return err
		}
		if userID != post.UserID {
			if err := l.notifier.RetractForLike(ctx, tx, removed.ID); err != nil {
				return err
			}
		}
		result, likeID = models.LikeRemoved, removed.ID
		return nil
	})
	return result, likeID, err
}

// ListLikes returns the likes of a post, most recent first
func (l *EngagementLedger) ListLikes(ctx context.Context, postID string, page, limit int) ([]models.Like, error) {
	const op = "likes/ListLikes"
	lg := l.logger.With(zap.String("op", op), zap.String("post_id", postID))

	if postID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "post is required")
	}
	req, err := l.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := livePost(ctx, l.store, op, postID); err != nil {
		return nil, failure(lg, op, err)
	}

	likes, err := l.store.Likes().ListLikes(ctx, postID, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}

	ids := make([]string, len(likes))
	for i, like := range likes {
		ids[i] = like.UserID
	}
	users, err := compactUsers(ctx, l.store, ids)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	for i := range likes {
		likes[i].User = compactPtr(users, likes[i].UserID)
	}
	return likes, nil
}

// LikedPostIDs reports which of postIDs userID has liked, in one lookup
func (l *EngagementLedger) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	const op = "likes/LikedPostIDs"

	liked, err := l.store.Likes().LikedPostIDs(ctx, userID, uniq(postIDs))
	if err != nil {
		return nil, failure(l.logger.With(zap.String("op", op)), op, err)
	}
	return liked, nil
}

// livePost loads a post that has not been deleted
func livePost(ctx context.Context, store repositories.Store, op, postID string) (*models.Post, error) {
	post, err := store.Posts().GetPostByID(ctx, postID)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "post not found")
		}
		return nil, err
	}
	if post.IsDeleted {
		return nil, fail(op, apperrors.ErrNotFound, "post not found")
	}
	return post, nil
}
