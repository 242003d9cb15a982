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

// SocialGraph owns the follow edge state machine:
//
//	none -> pending   Follow, target private
//	none -> accepted  Follow, target public
//	pending -> accepted  AcceptFollowRequest
//	pending -> none      RejectFollowRequest or Unfollow
//	accepted -> none     Unfollow
//
// Only accepted edges count towards followers and following.
type SocialGraph struct {
	store    repositories.Store
	counters *CounterLedger
	notifier *NotificationDispatcher
	recorder activity.Recorder
	logger   *zap.Logger
	pager    pager
}

// NewSocialGraph creates a SocialGraph
func NewSocialGraph(
	store repositories.Store,
	counters *CounterLedger,
	notifier *NotificationDispatcher,
	recorder activity.Recorder,
	logger *zap.Logger,
	p pager,
) *SocialGraph {
	return &SocialGraph{
		store:    store,
		counters: counters,
		notifier: notifier,
		recorder: recorder,
		logger:   logger.Named("graph_service"),
		pager:    p,
	}
}

// Follow creates an edge from followerID to targetID. The edge is accepted
// at once unless the target is private.
func (g *SocialGraph) Follow(ctx context.Context, followerID, targetID string) (*models.Follow, error) {
	const op = "graph/Follow"
	lg := g.logger.With(zap.String("op", op), zap.String("follower_id", followerID), zap.String("target_id", targetID))

	if followerID == "" || targetID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "follower and target are required")
	}
	if followerID == targetID {
		return nil, fail(op, apperrors.ErrInvalidRelationship, "cannot follow yourself")
	}

	var follow *models.Follow
	err := g.store.Transaction(ctx, func(tx repositories.Store) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "user not found")
			}
			return err
		}
		follower, err := tx.Users().GetUserByID(ctx, followerID)
		if err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "follower not found")
			}
			return err
		}

		if _, err := tx.Follows().GetFollow(ctx, followerID, targetID); err == nil {
			return fail(op, apperrors.ErrAlreadyExists, "already following or requested")
		} else if !notFound(err) {
			return err
		}

		f := &models.Follow{
			ID:          uuid.NewString(),
			FollowerID:  followerID,
			FollowingID: targetID,
			Accepted:    !target.IsPrivate,
		}
		if err := tx.Follows().CreateFollow(ctx, f); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fail(op, apperrors.ErrAlreadyExists, "already following or requested")
			}
			return err
		}

		n := &models.Notification{
			RecipientID: targetID,
			ActorID:     &followerID,
			FollowID:    &f.ID,
		}
		if f.Accepted {
			if err := g.counters.Increment(ctx, tx, repositories.UserFollowing, followerID); err != nil {
				return err
			}
			if err := g.counters.Increment(ctx, tx, repositories.UserFollowers, targetID); err != nil {
				return err
			}
			n.Type = models.NotificationFollow
			n.Message = fmt.Sprintf("%s started following you", follower.Username)
		} else {
			n.Type = models.NotificationFollowRequest
			n.Message = fmt.Sprintf("%s requested to follow you", follower.Username)
		}
		if err := g.notifier.Notify(ctx, tx, n); err != nil {
			return err
		}

		follow = f
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	action := activity.ActionFollow
	if !follow.Accepted {
		action = activity.ActionFollowRequest
	}
	activity.Emit(ctx, g.recorder, lg, activity.Event{
		Action: action, ActorID: followerID, SubjectID: targetID, FollowID: follow.ID,
	})
	lg.Info("Follow created", zap.Bool("accepted", follow.Accepted))

	return follow, nil
}

// Unfollow removes the edge from followerID to targetID, pending or not.
// Counters move only when the removed edge had been accepted.
func (g *SocialGraph) Unfollow(ctx context.Context, followerID, targetID string) error {
	const op = "graph/Unfollow"
	lg := g.logger.With(zap.String("op", op), zap.String("follower_id", followerID), zap.String("target_id", targetID))

	if followerID == "" || targetID == "" {
		return fail(op, apperrors.ErrInvalidArgument, "follower and target are required")
	}

	var removed *models.Follow
	err := g.store.Transaction(ctx, func(tx repositories.Store) error {
		f, err := tx.Follows().GetFollowForUpdate(ctx, followerID, targetID)
		if err != nil {
			if notFound(err) {
				return fail(op, apperrors.ErrNotFound, "not following this user")
			}
			return err
		}

		deleted, err := tx.Follows().DeleteFollow(ctx, f.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fail(op, apperrors.ErrNotFound, "not following this user")
		}

		if wasAccepted := f.Accepted; wasAccepted {
			if err := g.counters.Decrement(ctx, tx, repositories.UserFollowing, followerID); err != nil {
				return err
			}
			if err := g.counters.Decrement(ctx, tx, repositories.UserFollowers, targetID); err != nil {
				return err
			}
		}

		if err := g.notifier.RetractForFollow(ctx, tx, f.ID); err != nil {
			return err
		}
		removed = f
		return nil
	})
	if err != nil {
		return failure(lg, op, err)
	}

	activity.Emit(ctx, g.recorder, lg, activity.Event{
		Action: activity.ActionUnfollow, ActorID: followerID, SubjectID: targetID, FollowID: removed.ID,
	})
	lg.Info("Follow removed", zap.Bool("was_accepted", removed.Accepted))
	return nil
}

// pendingForUpdate locks the pending edge from followerID to targetID.
// An edge that is gone or already accepted counts as missing, so the loser
// of two concurrent resolutions observes NotFound.
func pendingForUpdate(ctx context.Context, tx repositories.Store, op, followerID, targetID string) (*models.Follow, error) {
	f, err := tx.Follows().GetFollowForUpdate(ctx, followerID, targetID)
	if err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "follow request not found")
		}
		return nil, err
	}
	if f.Accepted {
		return nil, fail(op, apperrors.ErrNotFound, "follow request not found")
	}
	return f, nil
}

// AcceptFollowRequest accepts the pending request from followerID to targetID
func (g *SocialGraph) AcceptFollowRequest(ctx context.Context, targetID, followerID string) (*models.Follow, error) {
	const op = "graph/AcceptFollowRequest"
	lg := g.logger.With(zap.String("op", op), zap.String("follower_id", followerID), zap.String("target_id", targetID))

	if followerID == "" || targetID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "follower and target are required")
	}

	var follow *models.Follow
	err := g.store.Transaction(ctx, func(tx repositories.Store) error {
		f, err := pendingForUpdate(ctx, tx, op, followerID, targetID)
		if err != nil {
			return err
		}

		accepted, err := tx.Follows().AcceptFollow(ctx, f.ID)
		if err != nil {
			return err
		}
		if !accepted {
			return fail(op, apperrors.ErrNotFound, "follow request not found")
		}

		if err := g.counters.Increment(ctx, tx, repositories.UserFollowing, followerID); err != nil {
			return err
		}
		if err := g.counters.Increment(ctx, tx, repositories.UserFollowers, targetID); err != nil {
			return err
		}

		if err := g.notifier.RetractForFollow(ctx, tx, f.ID); err != nil {
			return err
		}

		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := g.notifier.Notify(ctx, tx, &models.Notification{
			RecipientID: followerID,
			ActorID:     &targetID,
			Type:        models.NotificationAcceptFollowRequest,
			Message:     fmt.Sprintf("%s accepted your follow request", target.Username),
			FollowID:    &f.ID,
		}); err != nil {
			return err
		}

		f.Accepted = true
		follow = f
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	activity.Emit(ctx, g.recorder, lg, activity.Event{
		Action: activity.ActionAcceptFollow, ActorID: targetID, SubjectID: followerID, FollowID: follow.ID,
	})
	lg.Info("Follow request accepted")
	return follow, nil
}

// RejectFollowRequest removes the pending request from followerID to targetID
func (g *SocialGraph) RejectFollowRequest(ctx context.Context, targetID, followerID string) error {
	const op = "graph/RejectFollowRequest"
	lg := g.logger.With(zap.String("op", op), zap.String("follower_id", followerID), zap.String("target_id", targetID))

	if followerID == "" || targetID == "" {
		return fail(op, apperrors.ErrInvalidArgument, "follower and target are required")
	}

	var rejected *models.Follow
	err := g.store.Transaction(ctx, func(tx repositories.Store) error {
		f, err := pendingForUpdate(ctx, tx, op, followerID, targetID)
		if err != nil {
			return err
		}

		deleted, err := tx.Follows().DeleteFollow(ctx, f.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return fail(op, apperrors.ErrNotFound, "follow request not found")
		}

		if err := g.notifier.RetractForFollow(ctx, tx, f.ID); err != nil {
			return err
		}
		rejected = f
		return nil
	})
	if err != nil {
		return failure(lg, op, err)
	}

	activity.Emit(ctx, g.recorder, lg, activity.Event{
		Action: activity.ActionRejectFollow, ActorID: targetID, SubjectID: followerID, FollowID: rejected.ID,
	})
	lg.Info("Follow request rejected")
	return nil
}

// ListFollowers returns accepted edges pointing at userID, newest first
func (g *SocialGraph) ListFollowers(ctx context.Context, userID string, page, limit int) ([]models.Follow, error) {
	return g.list(ctx, "graph/ListFollowers", userID, page, limit, g.store.Follows().ListFollowers)
}

// ListFollowing returns accepted edges leaving userID, newest first
func (g *SocialGraph) ListFollowing(ctx context.Context, userID string, page, limit int) ([]models.Follow, error) {
	return g.list(ctx, "graph/ListFollowing", userID, page, limit, g.store.Follows().ListFollowing)
}

// ListPendingRequests returns pending edges pointing at userID, newest first
func (g *SocialGraph) ListPendingRequests(ctx context.Context, userID string, page, limit int) ([]models.Follow, error) {
	return g.list(ctx, "graph/ListPendingRequests", userID, page, limit, g.store.Follows().ListPending)
}

type followLister func(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error)

func (g *SocialGraph) list(ctx context.Context, op, userID string, page, limit int, fetch followLister) ([]models.Follow, error) {
	lg := g.logger.With(zap.String("op", op), zap.String("user_id", userID))

	if userID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user id is required")
	}
	req, err := g.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}

	if _, err := g.store.Users().GetUserByID(ctx, userID); err != nil {
		if notFound(err) {
			return nil, fail(op, apperrors.ErrNotFound, "user not found")
		}
		return nil, failure(lg, op, err)
	}

	follows, err := fetch(ctx, userID, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}

	ids := make([]string, 0, len(follows)*2)
	for _, f := range follows {
		ids = append(ids, f.FollowerID, f.FollowingID)
	}
	users, err := compactUsers(ctx, g.store, ids)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	for i := range follows {
		follows[i].Follower = compactPtr(users, follows[i].FollowerID)
		follows[i].Following = compactPtr(users, follows[i].FollowingID)
	}
	return follows, nil
}

// IsFollowing reports whether followerID has an accepted edge to targetID
func (g *SocialGraph) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	const op = "graph/IsFollowing"

	f, err := g.edge(ctx, followerID, targetID)
	if err != nil {
		return false, failure(g.logger.With(zap.String("op", op)), op, err)
	}
	return models.StateOf(f) == models.FollowStateAccepted, nil
}

// Relationship describes the edges between viewerID and targetID in both
// directions
func (g *SocialGraph) Relationship(ctx context.Context, viewerID, targetID string) (models.Relationship, error) {
	const op = "graph/Relationship"
	lg := g.logger.With(zap.String("op", op))

	if viewerID == "" || targetID == "" {
		return models.Relationship{}, fail(op, apperrors.ErrInvalidArgument, "viewer and target are required")
	}
	if _, err := g.store.Users().GetUserByID(ctx, targetID); err != nil {
		if notFound(err) {
			return models.Relationship{}, fail(op, apperrors.ErrNotFound, "user not found")
		}
		return models.Relationship{}, failure(lg, op, err)
	}

	out, err := g.edge(ctx, viewerID, targetID)
	if err != nil {
		return models.Relationship{}, failure(lg, op, err)
	}
	in, err := g.edge(ctx, targetID, viewerID)
	if err != nil {
		return models.Relationship{}, failure(lg, op, err)
	}
	return models.Relationship{
		Following:  models.StateOf(out),
		FollowedBy: models.StateOf(in),
	}, nil
}

// edge returns the edge between the pair, or nil when there is none
func (g *SocialGraph) edge(ctx context.Context, followerID, targetID string) (*models.Follow, error) {
	f, err := g.store.Follows().GetFollow(ctx, followerID, targetID)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}
