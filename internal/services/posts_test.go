package services_test

import (
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLifecycleCounters(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "b", false)

	original := createPost(t, svc, "a", "")
	assert.Equal(t, models.VisibilityPublic, original.Visibility)
	assert.Equal(t, 1, getUser(t, store, "a").PostsCount)

	share, err := svc.Posts.SharePost(ctx, "b", original.ID, models.SharePostRequest{Content: "nice"})
	require.NoError(t, err)
	require.NotNil(t, share.ParentPostID)
	assert.Equal(t, original.ID, *share.ParentPostID)
	assert.Equal(t, 1, getPost(t, store, original.ID).ShareCount)
	assert.Equal(t, 1, getUser(t, store, "b").PostsCount)

	require.NoError(t, svc.Posts.DeletePost(ctx, "b", share.ID))
	assert.Equal(t, 0, getPost(t, store, original.ID).ShareCount)
	assert.Equal(t, 0, getUser(t, store, "b").PostsCount)

	err = svc.Posts.DeletePost(ctx, "b", share.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, getUser(t, store, "b").PostsCount)
}

func TestPostOwnership(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "b", false)
	post := createPost(t, svc, "a", models.VisibilityPublic)

	content := "changed"
	_, err := svc.Posts.UpdatePost(ctx, "b", post.ID, models.UpdatePostRequest{Content: &content})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.Posts.DeletePost(ctx, "b", post.ID), apperrors.ErrUnauthorized)

	private := models.VisibilityPrivate
	updated, err := svc.Posts.UpdatePost(ctx, "a", post.ID, models.UpdatePostRequest{Content: &content, Visibility: &private})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)
	assert.Equal(t, models.VisibilityPrivate, updated.Visibility)

	bogus := models.Visibility("friends")
	_, err = svc.Posts.UpdatePost(ctx, "a", post.ID, models.UpdatePostRequest{Visibility: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestShareRequiresVisibleOriginal(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)
	createUser(t, svc, "p", true)
	hidden := createPost(t, svc, "a", models.VisibilityPrivate)
	privOwner := createPost(t, svc, "p", models.VisibilityPublic)

	_, err := svc.Posts.SharePost(ctx, "a", privOwner.ID, models.SharePostRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	_, err = svc.Posts.SharePost(ctx, "p", hidden.ID, models.SharePostRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	_, err = svc.Posts.SharePost(ctx, "a", "missing", models.SharePostRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "a", false)

	_, err := svc.Posts.CreatePost(ctx, "a", models.CreatePostRequest{Content: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = svc.Posts.CreatePost(ctx, "a", models.CreatePostRequest{Content: "x", Visibility: "friends"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = svc.Posts.CreatePost(ctx, "ghost", models.CreatePostRequest{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeletePostRetractsItsNotifications(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "author", false)
	createUser(t, svc, "fan", false)
	post := createPost(t, svc, "author", models.VisibilityPublic)
	kept := createPost(t, svc, "author", models.VisibilityPublic)

	_, err := svc.Likes.ToggleLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	comment, err := svc.Comments.AddComment(ctx, post.ID, "fan", "first")
	require.NoError(t, err)
	_, err = svc.Comments.AddReply(ctx, comment.ID, post.ID, "author", "thanks")
	require.NoError(t, err)
	_, err = svc.Likes.ToggleLike(ctx, kept.ID, "fan")
	require.NoError(t, err)

	require.Len(t, notificationsOf(t, store, "author"), 3)
	require.Len(t, notificationsOf(t, store, "fan"), 1)

	require.NoError(t, svc.Posts.DeletePost(ctx, "author", post.ID))

	remaining := notificationsOf(t, store, "author")
	require.Len(t, remaining, 1)
	require.NotNil(t, remaining[0].PostID)
	assert.Equal(t, kept.ID, *remaining[0].PostID)
	assert.Empty(t, notificationsOf(t, store, "fan"))
}
