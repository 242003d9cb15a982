package services_test

import (
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T) (*servicesFixture, []string) {
	t.Helper()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "owner", false)
	post := createPost(t, svc, "owner", models.VisibilityPublic)

	fans := []string{"f1", "f2", "f3"}
	for _, id := range fans {
		createUser(t, svc, id, false)
		_, err := svc.Likes.ToggleLike(ctx, post.ID, id)
		require.NoError(t, err)
	}
	return &servicesFixture{svc: svc, store: store}, fans
}

func TestNotificationListing(t *testing.T) {
	t.Parallel()
	fx, _ := seedNotifications(t)
	ctx := t.Context()

	items, meta, err := fx.svc.Notifications.List(ctx, "owner", 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), meta.TotalItems)
	assert.Equal(t, 2, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.False(t, meta.HasPreviousPage)

	require.NotNil(t, items[0].Actor)
	assert.Equal(t, "f3", items[0].Actor.Username)

	count, err := fx.svc.Notifications.UnreadCount(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, _, err = fx.svc.Notifications.List(ctx, "owner", 0, 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestNotificationReadState(t *testing.T) {
	t.Parallel()
	fx, _ := seedNotifications(t)
	ctx := t.Context()

	items, _, err := fx.svc.Notifications.List(ctx, "owner", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, fx.svc.Notifications.MarkRead(ctx, items[0].ID, "owner"))

	unread, meta, err := fx.svc.Notifications.ListUnread(ctx, "owner", 1, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 2)
	assert.Equal(t, int64(2), meta.TotalItems)

	got, err := fx.svc.Notifications.Get(ctx, items[0].ID, "owner")
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	updated, err := fx.svc.Notifications.MarkAllRead(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := fx.svc.Notifications.UnreadCount(ctx, "owner")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationsBelongToRecipient(t *testing.T) {
	t.Parallel()
	fx, _ := seedNotifications(t)
	ctx := t.Context()

	items, _, err := fx.svc.Notifications.List(ctx, "owner", 1, 10)
	require.NoError(t, err)
	id := items[0].ID

	_, err = fx.svc.Notifications.Get(ctx, id, "f1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Notifications.MarkRead(ctx, id, "f1"), apperrors.ErrNotFound)
	assert.ErrorIs(t, fx.svc.Notifications.Delete(ctx, id, "f1"), apperrors.ErrNotFound)

	require.NoError(t, fx.svc.Notifications.Delete(ctx, id, "owner"))
	assert.ErrorIs(t, fx.svc.Notifications.Delete(ctx, id, "owner"), apperrors.ErrNotFound)

	removed, err := fx.svc.Notifications.DeleteAll(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Empty(t, notificationsOf(t, fx.store, "owner"))
}
