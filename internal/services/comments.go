package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommentThreads manages top-level comments and their replies. Threads are
// one level deep: a reply always points at a top-level comment. Comments
// are soft-deleted so the counters stay tied to live children.
type CommentThreads struct {
	store    repositories.Store
	counters *CounterLedger
	notifier *NotificationDispatcher
	recorder activity.Recorder
	logger   *zap.Logger
	pager    pager
}

// NewCommentThreads creates a CommentThreads
func NewCommentThreads(
	store repositories.Store,
	counters *CounterLedger,
	notifier *NotificationDispatcher,
	recorder activity.Recorder,
	logger *zap.Logger,
	p pager,
) *CommentThreads {
	return &CommentThreads{
		store:    store,
		counters: counters,
		notifier: notifier,
		recorder: recorder,
		logger:   logger.Named("comment_service"),
		pager:    p,
	}
}

// AddComment creates a top-level comment on postID
func (c *CommentThreads) AddComment(ctx context.Context, postID, userID, content string) (*models.Comment, error) {
	const op = "comments/AddComment"
	lg := c.logger.With(zap.String("op", op), zap.String("post_id", postID), zap.String("user_id", userID))

	content = strings.TrimSpace(content)
	if postID == "" || userID == "" || content == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "post, user and content are required")
	}

	var comment *models.Comment
	err := c.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := livePost(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		author, err := existingUser(ctx, tx, op, userID)
		if err != nil {
			return err
		}

		cm := &models.Comment{
			ID:      uuid.NewString(),
			PostID:  postID,
			UserID:  userID,
			Content: content,
		}
		if err := tx.Comments().CreateComment(ctx, cm); err != nil {
			return err
		}
		if err := c.counters.Increment(ctx, tx, repositories.PostComments, postID); err != nil {
			return err
		}

		if userID != post.UserID {
			if err := c.notifier.Notify(ctx, tx, &models.Notification{
				RecipientID: post.UserID,
				ActorID:     &userID,
				Type:        models.NotificationComment,
				Message:     fmt.Sprintf("%s commented on your post", author.Username),
				PostID:      &postID,
				CommentID:   &cm.ID,
			}); err != nil {
				return err
			}
		}

		compact := author.ToCompact()
		cm.Author = &compact
		comment = cm
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	activity.Emit(ctx, c.recorder, lg, activity.Event{
		Action: activity.ActionComment, ActorID: userID, PostID: postID, CommentID: comment.ID,
	})
	lg.Info("Comment added", zap.String("comment_id", comment.ID))
	return comment, nil
}

// ReplyToComment replies to parentID on the post the parent belongs to. A
// missing or deleted parent is an invalid argument, as in AddReply.
func (c *CommentThreads) ReplyToComment(ctx context.Context, parentID, userID, content string) (*models.Comment, error) {
	const op = "comments/ReplyToComment"

	if parentID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "parent is required")
	}
	parent, err := c.store.Comments().GetCommentByID(ctx, parentID)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrInvalidArgument, "parent comment does not exist")
		}
		return nil, failure(c.logger.With(zap.String("op", op)), op, err)
	}
	return c.AddReply(ctx, parent.ID, parent.PostID, userID, content)
}

// AddReply creates a reply to the top-level comment parentID on postID
func (c *CommentThreads) AddReply(ctx context.Context, parentID, postID, userID, content string) (*models.Comment, error) {
	const op = "comments/AddReply"
	lg := c.logger.With(zap.String("op", op), zap.String("parent_id", parentID), zap.String("user_id", userID))

	content = strings.TrimSpace(content)
	if parentID == "" || postID == "" || userID == "" || content == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "parent, post, user and content are required")
	}

	var reply *models.Comment
	err := c.store.Transaction(ctx, func(tx repositories.Store) error {
		parent, err := tx.Comments().GetCommentByID(ctx, parentID)
		if err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrInvalidArgument, "parent comment does not exist")
			}
			return err
		}
		switch {
		case parent.IsDeleted:
			return fail(op, apperrors.ErrInvalidArgument, "parent comment does not exist")
		case parent.IsReply():
			return fail(op, apperrors.ErrInvalidArgument, "cannot reply to a reply")
		case parent.PostID != postID:
			return fail(op, apperrors.ErrInvalidArgument, "parent comment belongs to another post")
		}

		if _, err := livePost(ctx, tx, op, postID); err != nil {
			return err
		}
		author, err := existingUser(ctx, tx, op, userID)
		if err != nil {
			return err
		}

		r := &models.Comment{
			ID:       uuid.NewString(),
			PostID:   postID,
			UserID:   userID,
			ParentID: &parent.ID,
			Content:  content,
		}
		if err := tx.Comments().CreateComment(ctx, r); err != nil {
			return err
		}
		if err := c.counters.Increment(ctx, tx, repositories.CommentReplies, parent.ID); err != nil {
			return err
		}

		if userID != parent.UserID {
			if err := c.notifier.Notify(ctx, tx, &models.Notification{
				RecipientID: parent.UserID,
				ActorID:     &userID,
				Type:        models.NotificationCommentReply,
				Message:     fmt.Sprintf("%s replied to your comment", author.Username),
				PostID:      &postID,
				CommentID:   &r.ID,
			}); err != nil {
				return err
			}
		}

		compact := author.ToCompact()
		r.Author = &compact
		reply = r
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	activity.Emit(ctx, c.recorder, lg, activity.Event{
		Action: activity.ActionReply, ActorID: userID, PostID: postID, CommentID: reply.ID,
	})
	lg.Info("Reply added", zap.String("comment_id", reply.ID))
	return reply, nil
}

// liveComment loads a comment that has not been deleted
func liveComment(ctx context.Context, store repositories.Store, op, commentID string) (*models.Comment, error) {
	cm, err := store.Comments().GetCommentByID(ctx, commentID)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "comment not found")
		}
		return nil, err
	}
	if cm.IsDeleted {
		return nil, fail(op, apperrors.ErrNotFound, "comment not found")
	}
	return cm, nil
}

// UpdateComment replaces the content of a comment owned by userID
func (c *CommentThreads) UpdateComment(ctx context.Context, commentID, content, userID string) (*models.Comment, error) {
	const op = "comments/UpdateComment"
	lg := c.logger.With(zap.String("op", op), zap.String("comment_id", commentID), zap.String("user_id", userID))

	content = strings.TrimSpace(content)
	if commentID == "" || userID == "" || content == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "comment, user and content are required")
	}

	var updated *models.Comment
	err := c.store.Transaction(ctx, func(tx repositories.Store) error {
		cm, err := liveComment(ctx, tx, op, commentID)
		if err != nil {
			return err
		}
		if cm.UserID != userID {
			return fail(op, apperrors.ErrUnauthorized, "only the author can edit this comment")
		}
		if err := tx.Comments().UpdateCommentContent(ctx, commentID, content); err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "comment not found")
			}
			return err
		}
		updated, err = tx.Comments().GetCommentByID(ctx, commentID)
		return err
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	lg.Info("Comment updated")
	return updated, nil
}

// DeleteComment soft-deletes a comment owned by userID and rolls back the
// counter it contributed to: the post's comment count for a top-level
// comment, the parent's reply count for a reply.
func (c *CommentThreads) DeleteComment(ctx context.Context, commentID, userID string) error {
	const op = "comments/DeleteComment"
	lg := c.logger.With(zap.String("op", op), zap.String("comment_id", commentID), zap.String("user_id", userID))

	if commentID == "" || userID == "" {
		return fail(op, apperrors.ErrInvalidArgument, "comment and user are required")
	}

	var deleted *models.Comment
	err := c.store.Transaction(ctx, func(tx repositories.Store) error {
		cm, err := liveComment(ctx, tx, op, commentID)
		if err != nil {
			return err
		}
		if cm.UserID != userID {
			return fail(op, apperrors.ErrUnauthorized, "only the author can delete this comment")
		}

		ok, err := tx.Comments().SoftDeleteComment(ctx, commentID)
		if err != nil {
			return err
		}
		if !ok {
			return fail(op, apperrors.ErrNotFound, "comment not found")
		}

		if cm.IsReply() {
			err = c.counters.Decrement(ctx, tx, repositories.CommentReplies, *cm.ParentID)
		} else {
			err = c.counters.Decrement(ctx, tx, repositories.PostComments, cm.PostID)
		}
		if err != nil {
			return err
		}

		if err := c.notifier.RetractForComment(ctx, tx, cm.ID); err != nil {
			return err
		}
		deleted = cm
		return nil
	})
	if err != nil {
		return failure(lg, op, err)
	}

	activity.Emit(ctx, c.recorder, lg, activity.Event{
		Action: activity.ActionDeleteComment, ActorID: userID, PostID: deleted.PostID, CommentID: deleted.ID,
	})
	lg.Info("Comment deleted", zap.Bool("reply", deleted.IsReply()))
	return nil
}

// GetComment returns a live comment with its author
func (c *CommentThreads) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	const op = "comments/GetComment"
	lg := c.logger.With(zap.String("op", op), zap.String("comment_id", commentID))

	if commentID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "comment is required")
	}
	cm, err := liveComment(ctx, c.store, op, commentID)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := c.withAuthors(ctx, []*models.Comment{cm}); err != nil {
		return nil, failure(lg, op, err)
	}
	return cm, nil
}

// ListComments returns live top-level comments of a post, newest first
func (c *CommentThreads) ListComments(ctx context.Context, postID string, page, limit int) ([]models.Comment, error) {
	const op = "comments/ListComments"
	lg := c.logger.With(zap.String("op", op), zap.String("post_id", postID))

	if postID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "post is required")
	}
	req, err := c.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := livePost(ctx, c.store, op, postID); err != nil {
		return nil, failure(lg, op, err)
	}

	comments, err := c.store.Comments().ListTopLevel(ctx, postID, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := c.withAuthors(ctx, pointers(comments)); err != nil {
		return nil, failure(lg, op, err)
	}
	return comments, nil
}

// ListReplies returns live replies to a comment, newest first
func (c *CommentThreads) ListReplies(ctx context.Context, parentID string, page, limit int) ([]models.Comment, error) {
	const op = "comments/ListReplies"
	lg := c.logger.With(zap.String("op", op), zap.String("parent_id", parentID))

	if parentID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "parent comment is required")
	}
	req, err := c.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := liveComment(ctx, c.store, op, parentID); err != nil {
		return nil, failure(lg, op, err)
	}

	replies, err := c.store.Comments().ListReplies(ctx, parentID, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := c.withAuthors(ctx, pointers(replies)); err != nil {
		return nil, failure(lg, op, err)
	}
	return replies, nil
}

func (c *CommentThreads) withAuthors(ctx context.Context, comments []*models.Comment) error {
	ids := make([]string, len(comments))
	for i, cm := range comments {
		ids[i] = cm.UserID
	}
	users, err := compactUsers(ctx, c.store, ids)
	if err != nil {
		return err
	}
	for _, cm := range comments {
		cm.Author = compactPtr(users, cm.UserID)
	}
	return nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

// existingUser loads a user that must exist for the operation to proceed
func existingUser(ctx context.Context, store repositories.Store, op, userID string) (*models.User, error) {
	u, err := store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return u, nil
}
