package services

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxShareDepth is how many shared ancestors are attached to a post
const maxShareDepth = 3

// FeedAssembler builds read-only, viewer-annotated post listings
type FeedAssembler struct {
	store  repositories.Store
	logger *zap.Logger
	pager  pager
}

// NewFeedAssembler creates a FeedAssembler
func NewFeedAssembler(store repositories.Store, logger *zap.Logger, p pager) *FeedAssembler {
	return &FeedAssembler{
		store:  store,
		logger: logger.Named("feed_service"),
		pager:  p,
	}
}

// canView applies the post visibility rule for a viewer who is not
// necessarily a follower: the owner sees everything, anyone else only
// public posts of public owners.
func canView(owner *models.User, post *models.Post, viewerID string) bool {
	if post.UserID == viewerID {
		return true
	}
	if owner == nil || owner.IsPrivate {
		return false
	}
	return post.Visibility == models.VisibilityPublic
}

// GetFeed returns the viewer's own posts and the public posts of public
// users the viewer follows, newest first
func (f *FeedAssembler) GetFeed(ctx context.Context, viewerID string, page, limit int) ([]models.Post, error) {
	const op = "feed/GetFeed"
	lg := f.logger.With(zap.String("op", op), zap.String("viewer_id", viewerID))

	if viewerID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "viewer is required")
	}
	req, err := f.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}

	posts, err := f.store.Posts().ListFeed(ctx, viewerID, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := f.annotate(ctx, viewerID, posts); err != nil {
		return nil, failure(lg, op, err)
	}
	return posts, nil
}

// GetProfilePosts returns the public posts of profileUserID, newest first
func (f *FeedAssembler) GetProfilePosts(ctx context.Context, profileUserID, viewerID string, page, limit int) ([]models.Post, error) {
	const op = "feed/GetProfilePosts"
	lg := f.logger.With(zap.String("op", op), zap.String("profile_id", profileUserID), zap.String("viewer_id", viewerID))

	if profileUserID == "" || viewerID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "profile and viewer are required")
	}
	req, err := f.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}
	if _, err := existingUser(ctx, f.store, op, profileUserID); err != nil {
		return nil, failure(lg, op, err)
	}

	posts, err := f.store.Posts().ListByOwner(ctx, profileUserID, true, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := f.annotate(ctx, viewerID, posts); err != nil {
		return nil, failure(lg, op, err)
	}
	return posts, nil
}

// GetMyPosts returns every live post of the viewer, private ones included
func (f *FeedAssembler) GetMyPosts(ctx context.Context, viewerID string, page, limit int) ([]models.Post, error) {
	const op = "feed/GetMyPosts"
	lg := f.logger.With(zap.String("op", op), zap.String("viewer_id", viewerID))

	if viewerID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "viewer is required")
	}
	req, err := f.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}

	posts, err := f.store.Posts().ListByOwner(ctx, viewerID, false, req)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	if err := f.annotate(ctx, viewerID, posts); err != nil {
		return nil, failure(lg, op, err)
	}
	return posts, nil
}

// GetPostByID returns one post if the viewer may see it
func (f *FeedAssembler) GetPostByID(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	const op = "feed/GetPostByID"
	lg := f.logger.With(zap.String("op", op), zap.String("post_id", postID), zap.String("viewer_id", viewerID))

	if postID == "" || viewerID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "post and viewer are required")
	}

	post, err := livePost(ctx, f.store, op, postID)
	if err != nil {
		return nil, failure(lg, op, err)
	}
	owner, err := f.store.Users().GetUserByID(ctx, post.UserID)
	if err != nil && !notFound(err) {
		return nil, failure(lg, op, err)
	}
	if !canView(owner, post, viewerID) {
		return nil, fail(op, apperrors.ErrAccessDenied, "you cannot view this post")
	}

	posts := []models.Post{*post}
	if err := f.annotate(ctx, viewerID, posts); err != nil {
		return nil, failure(lg, op, err)
	}
	return &posts[0], nil
}

// annotate fills IsLiked, Author and ParentPost on a page of posts with a
// constant number of queries, whatever the page size.
func (f *FeedAssembler) annotate(ctx context.Context, viewerID string, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ancestors, err := f.resolveShareChain(ctx, posts)
	if err != nil {
		return err
	}

	postIDs := make([]string, 0, len(posts)+len(ancestors))
	ownerIDs := make([]string, 0, len(posts)+len(ancestors))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		ownerIDs = append(ownerIDs, p.UserID)
	}
	for id, p := range ancestors {
		postIDs = append(postIDs, id)
		ownerIDs = append(ownerIDs, p.UserID)
	}

	var (
		liked  map[string]bool
		owners map[string]models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = f.store.Likes().LikedPostIDs(gctx, viewerID, uniq(postIDs))
		return err
	})
	g.Go(func() error {
		var err error
		owners, err = f.store.Users().GetUsersByIDs(gctx, uniq(ownerIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var decorate func(p *models.Post, depth int)
	decorate = func(p *models.Post, depth int) {
		p.IsLiked = liked[p.ID]
		if owner, ok := owners[p.UserID]; ok {
			compact := owner.ToCompact()
			p.Author = &compact
		}
		if depth >= maxShareDepth || p.ParentPostID == nil {
			return
		}
		parent, ok := ancestors[*p.ParentPostID]
		if !ok || parent.IsDeleted {
			return
		}
		var owner *models.User
		if u, ok := owners[parent.UserID]; ok {
			owner = &u
		}
		if !canView(owner, &parent, viewerID) {
			return
		}
		decorate(&parent, depth+1)
		p.ParentPost = &parent
	}
	for i := range posts {
		decorate(&posts[i], 0)
	}
	return nil
}

// resolveShareChain loads the shared ancestors of posts one level per
// query, stopping after maxShareDepth levels.
func (f *FeedAssembler) resolveShareChain(ctx context.Context, posts []models.Post) (map[string]models.Post, error) {
	ancestors := make(map[string]models.Post)

	level := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.ParentPostID != nil {
			level = append(level, *p.ParentPostID)
		}
	}

	for depth := 0; depth < maxShareDepth && len(level) > 0; depth++ {
		var missing []string
		for _, id := range uniq(level) {
			if _, ok := ancestors[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			break
		}

		found, err := f.store.Posts().GetPostsByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}

		level = level[:0]
		for id, p := range found {
			ancestors[id] = p
			if p.ParentPostID != nil {
				level = append(level, *p.ParentPostID)
			}
		}
	}
	return ancestors, nil
}
