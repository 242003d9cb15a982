// Package services holds the engagement core. Every mutation runs as one
// Store transaction covering the primary change, its counter adjustments
// and its notification fan-out.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"go.uber.org/zap"
)

// DefaultMaxPageSize bounds every listing when no other limit is configured
const DefaultMaxPageSize = 100

// Options tunes the services built by New
type Options struct {
	MaxPageSize int
	Recorder    activity.Recorder
}

// Services bundles the components sharing one store
type Services struct {
	Counters      *CounterLedger
	Notifications *NotificationDispatcher
	Graph         *SocialGraph
	Likes         *EngagementLedger
	Comments      *CommentThreads
	Feed          *FeedAssembler
	Posts         *PostService
	Users         *UserService
	Activity      *ActivityHistory
}

// New wires every component on top of store
func New(store repositories.Store, logger *zap.Logger, opts Options) *Services {
	p := newPager(opts.MaxPageSize)
	rec := opts.Recorder
	if rec == nil {
		rec = activity.Nop{}
	}
	var reader activity.Reader = activity.Nop{}
	if r, ok := rec.(activity.Reader); ok {
		reader = r
	}

	counters := NewCounterLedger(logger)
	notifier := NewNotificationDispatcher(store, logger, p)

	return &Services{
		Counters:      counters,
		Notifications: notifier,
		Graph:         NewSocialGraph(store, counters, notifier, rec, logger, p),
		Likes:         NewEngagementLedger(store, counters, notifier, rec, logger, p),
		Comments:      NewCommentThreads(store, counters, notifier, rec, logger, p),
		Feed:          NewFeedAssembler(store, logger, p),
		Posts:         NewPostService(store, counters, notifier, rec, logger),
		Users:         NewUserService(store, logger, p),
		Activity:      NewActivityHistory(reader, logger, p),
	}
}

type pager struct {
	max int
}

func newPager(size int) pager {
	if size <= 0 {
		size = DefaultMaxPageSize
	}
	return pager{max: size}
}

// request validates caller pagination and clamps the page size
func (p pager) request(op string, page, limit int) (models.PageRequest, error) {
	if page < 1 || limit < 1 {
		return models.PageRequest{}, fail(op, apperrors.ErrInvalidArgument, "page and limit must be positive")
	}
	return models.PageRequest{Page: page, Limit: min(limit, p.max)}, nil
}

func fail(op string, kind error, msg string) error {
	return fmt.Errorf("%s: %w", op, apperrors.New(kind, msg))
}

// failure turns whatever came out of a transaction into an error kind.
// Kinds pass through; storage errors are logged and hidden.
func failure(lg *zap.Logger, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsKnown(err):
		return err
	case errors.Is(err, repositories.ErrTxConflict):
		lg.Warn("Transaction lost to concurrent writers", zap.Error(err))
		return fail(op, apperrors.ErrConflict, "concurrent update, try again")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		lg.Warn("Request context ended", zap.Error(err))
		return fmt.Errorf("%s: %w", op, apperrors.ErrInternal)
	default:
		lg.Error("Storage error", zap.Error(err))
		return fmt.Errorf("%s: %w", op, apperrors.ErrInternal)
	}
}

func notFound(err error) bool {
	return errors.Is(err, repositories.ErrRecordNotFound)
}

// compactUsers loads the listed users in one query
func compactUsers(ctx context.Context, store repositories.Store, ids []string) (map[string]models.UserCompact, error) {
	users, err := store.Users().GetUsersByIDs(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserCompact, len(users))
	for id, u := range users {
		out[id] = u.ToCompact()
	}
	return out, nil
}

func compactPtr(m map[string]models.UserCompact, id string) *models.UserCompact {
	if c, ok := m[id]; ok {
		return &c
	}
	return nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
