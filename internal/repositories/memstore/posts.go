package memstore

import (
	"context"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type postRepo struct{ s *Store }

func postKey(p models.Post) (time.Time, string) { return p.CreatedAt, p.ID }

func (r postRepo) CreatePost(ctx context.Context, post *models.Post) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.posts[post.ID]; ok {
			return repositories.ErrDuplicate
		}
		now := r.s.now()
		if post.CreatedAt.IsZero() {
			post.CreatedAt = now
		}
		post.UpdatedAt = now
		stored := *post
		stored.IsLiked, stored.Author, stored.ParentPost = false, nil, nil
		st.posts[post.ID] = stored
		st.track(post.ID)
		return nil
	})
}

func (r postRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	err := r.s.read(ctx, func(st *state) error {
		p, ok := st.posts[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r postRepo) GetPostsByIDs(ctx context.Context, ids []string) (map[string]models.Post, error) {
	out := make(map[string]models.Post, len(ids))
	err := r.s.read(ctx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.posts[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func (r postRepo) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.s.write(ctx, func(st *state) error {
		cur, ok := st.posts[post.ID]
		if !ok || cur.IsDeleted {
			return repositories.ErrRecordNotFound
		}
		cur.Content = post.Content
		cur.Visibility = post.Visibility
		cur.UpdatedAt = r.s.now()
		st.posts[post.ID] = cur
		return nil
	})
}

func (r postRepo) SoftDeletePost(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.s.write(ctx, func(st *state) error {
		cur, ok := st.posts[id]
		if !ok || cur.IsDeleted {
			return nil
		}
		cur.IsDeleted = true
		cur.UpdatedAt = r.s.now()
		st.posts[id] = cur
		deleted = true
		return nil
	})
	return deleted, err
}

func (r postRepo) ListFeed(ctx context.Context, viewerID string, page models.PageRequest) ([]models.Post, error) {
	var out []models.Post
	err := r.s.read(ctx, func(st *state) error {
		followed := make(map[string]bool)
		for _, f := range st.follows {
			if f.FollowerID == viewerID && f.Accepted {
				followed[f.FollowingID] = true
			}
		}
		var matched []models.Post
		for _, p := range st.posts {
			if p.IsDeleted {
				continue
			}
			own := p.UserID == viewerID
			if !own && !followed[p.UserID] {
				continue
			}
			if !own {
				owner, ok := st.users[p.UserID]
				if !ok || owner.IsPrivate || p.Visibility != models.VisibilityPublic {
					continue
				}
			}
			matched = append(matched, p)
		}
		newestFirst(st, matched, postKey)
		out = paginate(matched, page)
		return nil
	})
	return out, err
}

func (r postRepo) ListByOwner(ctx context.Context, ownerID string, publicOnly bool, page models.PageRequest) ([]models.Post, error) {
	var out []models.Post
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.Post
		for _, p := range st.posts {
			if p.UserID != ownerID || p.IsDeleted {
				continue
			}
			if publicOnly && p.Visibility != models.VisibilityPublic {
				continue
			}
			matched = append(matched, p)
		}
		newestFirst(st, matched, postKey)
		out = paginate(matched, page)
		return nil
	})
	return out, err
}
