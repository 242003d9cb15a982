package services_test

import (
	"sync"
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowPublicUser(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "b", false)

	follow, err := svc.Graph.Follow(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, follow.Accepted)

	following, err := svc.Graph.IsFollowing(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, following)

	assert.Equal(t, 1, getUser(t, store, "a").FollowingCount)
	assert.Equal(t, 1, getUser(t, store, "b").FollowersCount)
	assert.Equal(t, 0, getUser(t, store, "a").FollowersCount)
	assert.Equal(t, 0, getUser(t, store, "b").FollowingCount)

	notes := notificationsOf(t, store, "b")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFollow, notes[0].Type)
	require.NotNil(t, notes[0].FollowID)
	assert.Equal(t, follow.ID, *notes[0].FollowID)
}

func TestFollowPrivateUserThenAccept(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "u1", true)
	createUser(t, svc, "u2", false)

	follow, err := svc.Graph.Follow(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, follow.Accepted)

	assert.Equal(t, 0, getUser(t, store, "u1").FollowersCount)
	assert.Equal(t, 0, getUser(t, store, "u2").FollowingCount)
	assert.Equal(t, []models.NotificationType{models.NotificationFollowRequest}, typesOf(notificationsOf(t, store, "u1")))

	rel, err := svc.Graph.Relationship(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatePending, rel.Following)
	assert.Equal(t, models.FollowStateNone, rel.FollowedBy)

	accepted, err := svc.Graph.AcceptFollowRequest(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)

	assert.Equal(t, 1, getUser(t, store, "u1").FollowersCount)
	assert.Equal(t, 1, getUser(t, store, "u2").FollowingCount)

	assert.Empty(t, notificationsOf(t, store, "u1"))
	assert.Equal(t, []models.NotificationType{models.NotificationAcceptFollowRequest}, typesOf(notificationsOf(t, store, "u2")))

	pending, err := svc.Graph.ListPendingRequests(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.Graph.AcceptFollowRequest(ctx, "u1", "u2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFollowErrors(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "p", true)

	tests := []struct {
		name     string
		follower string
		target   string
		want     error
	}{
		{"self follow", "a", "a", apperrors.ErrInvalidRelationship},
		{"self follow private", "p", "p", apperrors.ErrInvalidRelationship},
		{"missing target", "a", "ghost", apperrors.ErrNotFound},
		{"empty target", "a", "", apperrors.ErrInvalidArgument},
	}
	for _, tt := range tests {
		_, err := svc.Graph.Follow(ctx, tt.follower, tt.target)
		assert.ErrorIs(t, err, tt.want, tt.name)
	}

	_, err := svc.Graph.Follow(ctx, "a", "p")
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, "a", "p")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists, "already requested")

	_, err = svc.Graph.Follow(ctx, "p", "a")
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, "p", "a")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists, "already following")
}

func TestUnfollowAfterAcceptRestoresCounters(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "b", true)

	_, err := svc.Graph.Follow(ctx, "a", "b")
	require.NoError(t, err)
	_, err = svc.Graph.AcceptFollowRequest(ctx, "b", "a")
	require.NoError(t, err)

	require.NoError(t, svc.Graph.Unfollow(ctx, "a", "b"))

	assert.Equal(t, 0, getUser(t, store, "a").FollowingCount)
	assert.Equal(t, 0, getUser(t, store, "b").FollowersCount)
	assert.Empty(t, notificationsOf(t, store, "b"))
	assert.Empty(t, notificationsOf(t, store, "a"))

	err = svc.Graph.Unfollow(ctx, "a", "b")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// re-following once the edge is gone is allowed
	_, err = svc.Graph.Follow(ctx, "a", "b")
	require.NoError(t, err)
}

func TestUnfollowPendingLeavesCounters(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "c", false)
	createUser(t, svc, "p", true)

	// p has one real follower so a wrong decrement would show
	_, err := svc.Graph.Follow(ctx, "c", "p")
	require.NoError(t, err)
	_, err = svc.Graph.AcceptFollowRequest(ctx, "p", "c")
	require.NoError(t, err)
	_, err = svc.Graph.Follow(ctx, "p", "a")
	require.NoError(t, err)

	_, err = svc.Graph.Follow(ctx, "a", "p")
	require.NoError(t, err)
	require.NoError(t, svc.Graph.Unfollow(ctx, "a", "p"))

	assert.Equal(t, 1, getUser(t, store, "p").FollowersCount)
	assert.Equal(t, 0, getUser(t, store, "a").FollowingCount)
	assert.Equal(t, 1, getUser(t, store, "a").FollowersCount)

	for _, n := range notificationsOf(t, store, "p") {
		assert.NotEqual(t, models.NotificationFollowRequest, n.Type)
	}
}

func TestRejectFollowRequest(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "p", true)

	_, err := svc.Graph.Follow(ctx, "a", "p")
	require.NoError(t, err)

	require.NoError(t, svc.Graph.RejectFollowRequest(ctx, "p", "a"))

	assert.Equal(t, 0, getUser(t, store, "p").FollowersCount)
	assert.Equal(t, 0, getUser(t, store, "a").FollowingCount)
	assert.Empty(t, notificationsOf(t, store, "p"))

	rel, err := svc.Graph.Relationship(ctx, "a", "p")
	require.NoError(t, err)
	assert.Equal(t, models.FollowStateNone, rel.Following)

	err = svc.Graph.RejectFollowRequest(ctx, "p", "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.Graph.AcceptFollowRequest(ctx, "p", "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRejectAcceptedEdgeIsNotFound(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "b", false)

	_, err := svc.Graph.Follow(ctx, "a", "b")
	require.NoError(t, err)

	err = svc.Graph.RejectFollowRequest(ctx, "b", "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 1, getUser(t, store, "b").FollowersCount)
}

func TestConcurrentAcceptAndReject(t *testing.T) {
	t.Parallel()

	for range 20 {
		svc, store := setupTest(t)
		ctx := t.Context()

		createUser(t, svc, "a", false)
		createUser(t, svc, "p", true)
		_, err := svc.Graph.Follow(ctx, "a", "p")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var acceptErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = svc.Graph.AcceptFollowRequest(ctx, "p", "a")
		}()
		go func() {
			defer wg.Done()
			rejectErr = svc.Graph.RejectFollowRequest(ctx, "p", "a")
		}()
		wg.Wait()

		// exactly one resolution wins, the other sees the edge resolved
		if acceptErr == nil {
			require.ErrorIs(t, rejectErr, apperrors.ErrNotFound)
			assert.Equal(t, 1, getUser(t, store, "p").FollowersCount)
			assert.Equal(t, 1, getUser(t, store, "a").FollowingCount)
		} else {
			require.NoError(t, rejectErr)
			require.ErrorIs(t, acceptErr, apperrors.ErrNotFound)
			assert.Equal(t, 0, getUser(t, store, "p").FollowersCount)
			assert.Equal(t, 0, getUser(t, store, "a").FollowingCount)
		}
	}
}

func TestGraphListings(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "star", false)
	createUser(t, svc, "priv", true)
	for _, id := range []string{"f1", "f2", "f3"} {
		createUser(t, svc, id, false)
		_, err := svc.Graph.Follow(ctx, id, "star")
		require.NoError(t, err)
	}
	_, err := svc.Graph.Follow(ctx, "f1", "priv")
	require.NoError(t, err)

	followers, err := svc.Graph.ListFollowers(ctx, "star", 1, 10)
	require.NoError(t, err)
	require.Len(t, followers, 3)
	assert.Equal(t, "f3", followers[0].FollowerID)
	assert.Equal(t, "f1", followers[2].FollowerID)
	require.NotNil(t, followers[0].Follower)
	assert.Equal(t, "f3", followers[0].Follower.Username)

	page2, err := svc.Graph.ListFollowers(ctx, "star", 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "f1", page2[0].FollowerID)

	following, err := svc.Graph.ListFollowing(ctx, "f1", 1, 10)
	require.NoError(t, err)
	require.Len(t, following, 1, "pending edges are not listed as following")
	assert.Equal(t, "star", following[0].FollowingID)

	pending, err := svc.Graph.ListPendingRequests(ctx, "priv", 1, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "f1", pending[0].FollowerID)

	_, err = svc.Graph.ListFollowers(ctx, "star", 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = svc.Graph.ListFollowers(ctx, "star", 1, -1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = svc.Graph.ListFollowers(ctx, "ghost", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMakingProfilePublicKeepsRequestsPending(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "p", true)
	_, err := svc.Graph.Follow(ctx, "a", "p")
	require.NoError(t, err)

	public := false
	_, err = svc.Users.UpdateUser(ctx, "p", models.UpdateUserRequest{IsPrivate: &public})
	require.NoError(t, err)

	following, err := svc.Graph.IsFollowing(ctx, "a", "p")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Equal(t, 0, getUser(t, store, "p").FollowersCount)
}
