package services_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeScenario(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "u1", false)
	createUser(t, svc, "u2", false)
	post := createPost(t, svc, "u1", models.VisibilityPublic)

	result, err := svc.Likes.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, result)
	assert.Equal(t, 1, getPost(t, store, post.ID).LikesCount)

	notes := notificationsOf(t, store, "u1")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationLike, notes[0].Type)
	require.NotNil(t, notes[0].PostID)
	assert.Equal(t, post.ID, *notes[0].PostID)

	result, err = svc.Likes.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.LikeRemoved, result)
	assert.Equal(t, 0, getPost(t, store, post.ID).LikesCount)
	assert.Empty(t, notificationsOf(t, store, "u1"))
}

func TestToggleOwnPostDoesNotNotify(t *testing.T) {
	t.Parallel()
	svc, store := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "u1", false)
	post := createPost(t, svc, "u1", models.VisibilityPublic)

	result, err := svc.Likes.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeAdded, result)
	assert.Equal(t, 1, getPost(t, store, post.ID).LikesCount)
	assert.Empty(t, notificationsOf(t, store, "u1"))
}

func TestToggleLikeMissingPost(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "u1", false)
	post := createPost(t, svc, "u1", models.VisibilityPublic)

	_, err := svc.Likes.ToggleLike(ctx, "nope", "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Posts.DeletePost(ctx, "u1", post.ID))
	_, err = svc.Likes.ToggleLike(ctx, post.ID, "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Likes.ToggleLike(ctx, "", "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestConcurrentToggleParity(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 3, 8, 15} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			t.Parallel()
			svc, store := setupTest(t)
			ctx := t.Context()

			createUser(t, svc, "owner", false)
			createUser(t, svc, "fan", false)
			post := createPost(t, svc, "owner", models.VisibilityPublic)

			var wg sync.WaitGroup
			errs := make([]error, n)
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, errs[i] = svc.Likes.ToggleLike(ctx, post.ID, "fan")
				}()
			}
			wg.Wait()

			for _, err := range errs {
				require.NoError(t, err)
			}

			want := n % 2
			assert.Equal(t, want, getPost(t, store, post.ID).LikesCount)

			liked, err := svc.Likes.LikedPostIDs(ctx, "fan", []string{post.ID})
			require.NoError(t, err)
			assert.Equal(t, want == 1, liked[post.ID])
			assert.Len(t, notificationsOf(t, store, "owner"), want)
		})
	}
}

func TestListLikes(t *testing.T) {
	t.Parallel()
	svc, _ := setupTest(t)
	ctx := t.Context()

	createUser(t, svc, "owner", false)
	post := createPost(t, svc, "owner", models.VisibilityPublic)
	for _, id := range []string{"l1", "l2", "l3"} {
		createUser(t, svc, id, false)
		_, err := svc.Likes.ToggleLike(ctx, post.ID, id)
		require.NoError(t, err)
	}

	likes, err := svc.Likes.ListLikes(ctx, post.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, "l3", likes[0].UserID)
	assert.Equal(t, "l2", likes[1].UserID)
	require.NotNil(t, likes[0].User)
	assert.Equal(t, "l3", likes[0].User.Username)

	_, err = svc.Likes.ListLikes(ctx, "missing", 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
