package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostService creates, shares, edits and deletes posts while keeping the
// owner's post count and the original's share count in step
type PostService struct {
	store    repositories.Store
	counters *CounterLedger
	notifier *NotificationDispatcher
	recorder activity.Recorder
	logger   *zap.Logger
}

// NewPostService creates a PostService
func NewPostService(
	store repositories.Store,
	counters *CounterLedger,
	notifier *NotificationDispatcher,
	recorder activity.Recorder,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		store:    store,
		counters: counters,
		notifier: notifier,
		recorder: recorder,
		logger:   logger.Named("post_service"),
	}
}

func visibilityOrDefault(op string, v models.Visibility) (models.Visibility, error) {
	if v == "" {
		return models.VisibilityPublic, nil
	}
	if !v.Valid() {
		return "", fail(op, apperrors.ErrInvalidArgument, "visibility must be public or private")
	}
	return v, nil
}

// CreatePost publishes a new post for userID
func (s *PostService) CreatePost(ctx context.Context, userID string, req models.CreatePostRequest) (*models.Post, error) {
	const op = "posts/CreatePost"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID))

	content := strings.TrimSpace(req.Content)
	if userID == "" || content == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user and content are required")
	}
	visibility, err := visibilityOrDefault(op, req.Visibility)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:         uuid.NewString(),
		UserID:     userID,
		Content:    content,
		Visibility: visibility,
	}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		author, err := existingUser(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		if err := tx.Posts().CreatePost(ctx, post); err != nil {
			return err
		}
		if err := s.counters.Increment(ctx, tx, repositories.UserPosts, userID); err != nil {
			return err
		}
		compact := author.ToCompact()
		post.Author = &compact
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	activity.Emit(ctx, s.recorder, lg, activity.Event{
		Action: activity.ActionCreatePost, ActorID: userID, PostID: post.ID,
	})
	lg.Info("Post created", zap.String("post_id", post.ID))
	return post, nil
}

// SharePost creates a post of userID pointing at originalID
func (s *PostService) SharePost(ctx context.Context, userID, originalID string, req models.SharePostRequest) (*models.Post, error) {
	const op = "posts/SharePost"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID), zap.String("original_id", originalID))

	if userID == "" || originalID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user and original post are required")
	}
	visibility, err := visibilityOrDefault(op, req.Visibility)
	if err != nil {
		return nil, err
	}

	share := &models.Post{
		ID:           uuid.NewString(),
		UserID:       userID,
		Content:      strings.TrimSpace(req.Content),
		Visibility:   visibility,
		ParentPostID: &originalID,
	}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		original, err := livePost(ctx, tx, op, originalID)
		if err != nil {
			return err
		}
		owner, err := tx.Users().GetUserByID(ctx, original.UserID)
		if err != nil && !notFound(err) {
			return err
		}
		if !canView(owner, original, userID) {
			return fail(op, apperrors.ErrAccessDenied, "you cannot share this post")
		}
		sharer, err := existingUser(ctx, tx, op, userID)
		if err != nil {
			return err
		}

		if err := tx.Posts().CreatePost(ctx, share); err != nil {
			return err
		}
		if err := s.counters.Increment(ctx, tx, repositories.PostShares, originalID); err != nil {
			return err
		}
		if err := s.counters.Increment(ctx, tx, repositories.UserPosts, userID); err != nil {
			return err
		}

		compact := sharer.ToCompact()
		share.Author = &compact
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	activity.Emit(ctx, s.recorder, lg, activity.Event{
		Action: activity.ActionSharePost, ActorID: userID, PostID: share.ID, SubjectID: originalID,
	})
	lg.Info("Post shared", zap.String("post_id", share.ID))
	return share, nil
}

// UpdatePost edits content or visibility of a post owned by userID
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req models.UpdatePostRequest) (*models.Post, error) {
	const op = "posts/UpdatePost"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID), zap.String("post_id", postID))

	if userID == "" || postID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user and post are required")
	}

	var updated *models.Post
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := livePost(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return fail(op, apperrors.ErrUnauthorized, "only the author can edit this post")
		}

		if req.Content != nil {
			content := strings.TrimSpace(*req.Content)
			if content == "" && post.ParentPostID == nil {
				return fail(op, apperrors.ErrInvalidArgument, "content cannot be empty")
			}
			post.Content = content
		}
		if req.Visibility != nil {
			if !req.Visibility.Valid() {
				return fail(op, apperrors.ErrInvalidArgument, "visibility must be public or private")
			}
			post.Visibility = *req.Visibility
		}

		if err := tx.Posts().UpdatePost(ctx, post); err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "post not found")
			}
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	lg.Info("Post updated")
	return updated, nil
}

// DeletePost soft-deletes a post owned by userID
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	const op = "posts/DeletePost"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID), zap.String("post_id", postID))

	if userID == "" || postID == "" {
		return fail(op, apperrors.ErrInvalidArgument, "user and post are required")
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		post, err := livePost(ctx, tx, op, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return fail(op, apperrors.ErrUnauthorized, "only the author can delete this post")
		}

		deleted, err := tx.Posts().SoftDeletePost(ctx, postID)
		if err != nil {
			return err
		}
		if !deleted {
			return fail(op, apperrors.ErrNotFound, "post not found")
		}

		if err := s.counters.Decrement(ctx, tx, repositories.UserPosts, userID); err != nil {
			return err
		}
		if err := s.notifier.RetractForPost(ctx, tx, postID); err != nil {
			return err
		}
		if post.ParentPostID != nil {
			return s.counters.Decrement(ctx, tx, repositories.PostShares, *post.ParentPostID)
		}
		return nil
	})
	if err != nil {
		return failure(lg, op, err)
	}

	activity.Emit(ctx, s.recorder, lg, activity.Event{
		Action: activity.ActionDeletePost, ActorID: userID, PostID: postID,
	})
	lg.Info("Post deleted")
	return nil
}
