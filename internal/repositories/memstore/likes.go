package memstore

import (
	"context"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
)

type likeRepo struct{ s *Store }

func likeKey(l models.Like) (time.Time, string) { return l.CreatedAt, l.ID }

func (r likeRepo) InsertLikeIfAbsent(ctx context.Context, like *models.Like) (bool, error) {
	var inserted bool
	err := r.s.write(ctx, func(st *state) error {
		for _, l := range st.likes {
			if l.PostID == like.PostID && l.UserID == like.UserID {
				return nil
			}
		}
		if like.CreatedAt.IsZero() {
			like.CreatedAt = r.s.now()
		}
		stored := *like
		stored.User = nil
		st.likes[like.ID] = stored
		st.track(like.ID)
		inserted = true
		return nil
	})
	return inserted, err
}

func (r likeRepo) DeleteLike(ctx context.Context, postID, userID string) (*models.Like, error) {
	var removed *models.Like
	err := r.s.write(ctx, func(st *state) error {
		for id, l := range st.likes {
			if l.PostID == postID && l.UserID == userID {
				delete(st.likes, id)
				removed = &l
				return nil
			}
		}
		return nil
	})
	return removed, err
}

func (r likeRepo) ListLikes(ctx context.Context, postID string, page models.PageRequest) ([]models.Like, error) {
	var out []models.Like
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.Like
		for _, l := range st.likes {
			if l.PostID == postID {
				matched = append(matched, l)
			}
		}
		newestFirst(st, matched, likeKey)
		out = paginate(matched, page)
		return nil
	})
	return out, err
}

func (r likeRepo) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	err := r.s.read(ctx, func(st *state) error {
		for _, l := range st.likes {
			if l.UserID == userID && wanted[l.PostID] {
				out[l.PostID] = true
			}
		}
		return nil
	})
	return out, err
}
