package services_test

import (
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/anonto42/nano-midea/engagement/internal/repositories/memstore"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type servicesFixture struct {
	svc   *services.Services
	store *memstore.Store
}

func setupTest(t *testing.T) (*services.Services, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := services.New(store, zaptest.NewLogger(t), services.Options{MaxPageSize: 50})
	return svc, store
}

func createUser(t *testing.T, svc *services.Services, id string, private bool) {
	t.Helper()
	_, err := svc.Users.CreateUser(t.Context(), id, models.CreateUserRequest{
		Username:    id,
		DisplayName: "User " + id,
		IsPrivate:   private,
	})
	require.NoError(t, err)
}

func createPost(t *testing.T, svc *services.Services, owner string, visibility models.Visibility) *models.Post {
	t.Helper()
	post, err := svc.Posts.CreatePost(t.Context(), owner, models.CreatePostRequest{
		Content:    "post by " + owner,
		Visibility: visibility,
	})
	require.NoError(t, err)
	return post
}

func getUser(t *testing.T, store repositories.Store, id string) *models.User {
	t.Helper()
	u, err := store.Users().GetUserByID(t.Context(), id)
	require.NoError(t, err)
	return u
}

func getPost(t *testing.T, store repositories.Store, id string) *models.Post {
	t.Helper()
	p, err := store.Posts().GetPostByID(t.Context(), id)
	require.NoError(t, err)
	return p
}

func getComment(t *testing.T, store repositories.Store, id string) *models.Comment {
	t.Helper()
	c, err := store.Comments().GetCommentByID(t.Context(), id)
	require.NoError(t, err)
	return c
}

func notificationsOf(t *testing.T, store repositories.Store, recipient string) []models.Notification {
	t.Helper()
	items, _, err := store.Notifications().GetByRecipientID(t.Context(), recipient, false, models.PageRequest{Page: 1, Limit: 1000})
	require.NoError(t, err)
	return items
}

func typesOf(items []models.Notification) []models.NotificationType {
	out := make([]models.NotificationType, len(items))
	for i, n := range items {
		out[i] = n.Type
	}
	return out
}
