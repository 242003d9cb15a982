package repositories_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// These tests run against a real PostgreSQL started with testcontainers:
//
//	GO_TEST_INTEGRATION=1 go test ./internal/repositories -run Integration -race -count=1

func startPostgres(t *testing.T) *repositories.PostgresStore {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "engagement"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		ProviderType:     tc.ProviderDocker,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/engagement?sslmode=disable", host, port.Port())

	// the listening port opens before the server accepts logins
	var db *gorm.DB
	require.Eventually(t, func() bool {
		conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return false
		}
		sqlDB, err := conn.DB()
		if err != nil || sqlDB.Ping() != nil {
			return false
		}
		db = conn
		return true
	}, 30*time.Second, 250*time.Millisecond)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repositories.NewPostgresStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func seedUser(t *testing.T, store repositories.Store, id string, private bool) {
	t.Helper()
	require.NoError(t, store.Users().CreateUser(t.Context(), &models.User{
		ID: id, Username: id, DisplayName: "User " + id, IsPrivate: private,
	}))
}

func seedPost(t *testing.T, store repositories.Store, owner string, visibility models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{ID: uuid.NewString(), UserID: owner, Content: "by " + owner, Visibility: visibility}
	require.NoError(t, store.Posts().CreatePost(t.Context(), post))
	return post
}

func TestIntegrationRepositories(t *testing.T) {
	store := startPostgres(t)
	ctx := t.Context()

	seedUser(t, store, "alice", false)
	seedUser(t, store, "bob", false)
	seedUser(t, store, "carol", true)
	seedUser(t, store, "100%_real", false)

	t.Run("duplicate user", func(t *testing.T) {
		err := store.Users().CreateUser(ctx, &models.User{ID: "alice", Username: "alice2"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	t.Run("like insert and delete", func(t *testing.T) {
		post := seedPost(t, store, "alice", models.VisibilityPublic)

		inserted, err := store.Likes().InsertLikeIfAbsent(ctx, &models.Like{ID: uuid.NewString(), PostID: post.ID, UserID: "bob"})
		require.NoError(t, err)
		assert.True(t, inserted)
		inserted, err = store.Likes().InsertLikeIfAbsent(ctx, &models.Like{ID: uuid.NewString(), PostID: post.ID, UserID: "bob"})
		require.NoError(t, err)
		assert.False(t, inserted)

		deleted, err := store.Likes().DeleteLike(ctx, post.ID, "bob")
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, "bob", deleted.UserID)
		deleted, err = store.Likes().DeleteLike(ctx, post.ID, "bob")
		require.NoError(t, err)
		assert.Nil(t, deleted)
	})

	t.Run("counters clamp at zero", func(t *testing.T) {
		post := seedPost(t, store, "alice", models.VisibilityPublic)

		require.NoError(t, store.Counters().Adjust(ctx, repositories.PostLikes, post.ID, 2))
		require.NoError(t, store.Counters().Adjust(ctx, repositories.PostLikes, post.ID, -5))
		got, err := store.Posts().GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.LikesCount)

		err = store.Counters().Adjust(ctx, repositories.PostLikes, "missing", 1)
		assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
	})

	t.Run("follow edges", func(t *testing.T) {
		follow := &models.Follow{ID: uuid.NewString(), FollowerID: "bob", FollowingID: "carol"}
		require.NoError(t, store.Follows().CreateFollow(ctx, follow))

		err := store.Follows().CreateFollow(ctx, &models.Follow{ID: uuid.NewString(), FollowerID: "bob", FollowingID: "carol"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
		err = store.Follows().CreateFollow(ctx, &models.Follow{ID: uuid.NewString(), FollowerID: "bob", FollowingID: "bob"})
		assert.Error(t, err, "self follow violates the check constraint")

		accepted, err := store.Follows().AcceptFollow(ctx, follow.ID)
		require.NoError(t, err)
		assert.True(t, accepted)
		accepted, err = store.Follows().AcceptFollow(ctx, follow.ID)
		require.NoError(t, err)
		assert.False(t, accepted)

		_, err = store.Follows().GetFollow(ctx, "carol", "bob")
		assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
	})

	t.Run("feed visibility", func(t *testing.T) {
		seedUser(t, store, "dave", false)
		seedUser(t, store, "erin", false)
		require.NoError(t, store.Follows().CreateFollow(ctx, &models.Follow{
			ID: uuid.NewString(), FollowerID: "dave", FollowingID: "erin", Accepted: true,
		}))
		public := seedPost(t, store, "erin", models.VisibilityPublic)
		seedPost(t, store, "erin", models.VisibilityPrivate)
		own := seedPost(t, store, "dave", models.VisibilityPrivate)

		feed, err := store.Posts().ListFeed(ctx, "dave", models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		ids := make([]string, 0, len(feed))
		for _, p := range feed {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []string{public.ID, own.ID}, ids)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		users, err := store.Users().SearchUsers(ctx, "%_", models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "100%_real", users[0].ID)

		users, err = store.Users().SearchUsers(ctx, "ALI", models.PageRequest{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].ID)
	})

	t.Run("post notifications retract", func(t *testing.T) {
		post := seedPost(t, store, "alice", models.VisibilityPublic)
		actor := "bob"
		require.NoError(t, store.Notifications().CreateNotification(ctx, &models.Notification{
			ID: uuid.NewString(), RecipientID: "alice", ActorID: &actor, Type: models.NotificationLike, PostID: &post.ID,
		}))

		n, err := store.Notifications().DeleteByCorrelation(ctx, models.Correlation{PostID: post.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}

func TestIntegrationConcurrentToggleParity(t *testing.T) {
	store := startPostgres(t)
	svc := services.New(store, zaptest.NewLogger(t), services.Options{})
	ctx := t.Context()

	seedUser(t, store, "owner", false)
	seedUser(t, store, "fan", false)

	for _, n := range []int{2, 7, 16} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			post, err := svc.Posts.CreatePost(ctx, "owner", models.CreatePostRequest{Content: "hot", Visibility: models.VisibilityPublic})
			require.NoError(t, err)

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

			// a toggle that lost every retry reports a conflict and commits nothing
			applied := 0
			for _, err := range errs {
				if err != nil {
					require.ErrorIs(t, err, apperrors.ErrConflict)
					continue
				}
				applied++
			}

			likes, err := store.Likes().ListLikes(ctx, post.ID, models.PageRequest{Page: 1, Limit: 100})
			require.NoError(t, err)
			got, err := store.Posts().GetPostByID(ctx, post.ID)
			require.NoError(t, err)

			assert.Equal(t, applied%2, len(likes))
			assert.Equal(t, len(likes), got.LikesCount)
		})
	}
}

func TestIntegrationConcurrentAcceptAndReject(t *testing.T) {
	store := startPostgres(t)
	svc := services.New(store, zaptest.NewLogger(t), services.Options{})
	ctx := t.Context()

	seedUser(t, store, "p", true)

	for i := range 10 {
		follower := fmt.Sprintf("a%d", i)
		seedUser(t, store, follower, false)
		_, err := svc.Graph.Follow(ctx, follower, "p")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var acceptErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = svc.Graph.AcceptFollowRequest(ctx, "p", follower)
		}()
		go func() {
			defer wg.Done()
			rejectErr = svc.Graph.RejectFollowRequest(ctx, "p", follower)
		}()
		wg.Wait()

		u, err := store.Users().GetUserByID(ctx, follower)
		require.NoError(t, err)
		edge, edgeErr := store.Follows().GetFollow(ctx, follower, "p")

		if acceptErr == nil {
			require.ErrorIs(t, rejectErr, apperrors.ErrNotFound)
			require.NoError(t, edgeErr)
			assert.True(t, edge.Accepted)
			assert.Equal(t, 1, u.FollowingCount)
		} else {
			require.NoError(t, rejectErr)
			require.ErrorIs(t, acceptErr, apperrors.ErrNotFound)
			assert.ErrorIs(t, edgeErr, repositories.ErrRecordNotFound)
			assert.Equal(t, 0, u.FollowingCount)
		}
	}

	followers, err := store.Follows().ListFollowers(ctx, "p", models.PageRequest{Page: 1, Limit: 100})
	require.NoError(t, err)
	p, err := store.Users().GetUserByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, len(followers), p.FollowersCount)
}
