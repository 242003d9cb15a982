package memstore

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

var errSelfFollow = errors.New("follower and following must differ")

type followRepo struct{ s *Store }

func followKey(f models.Follow) (time.Time, string) { return f.CreatedAt, f.ID }

func (r followRepo) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return r.s.write(ctx, func(st *state) error {
		if follow.FollowerID == follow.FollowingID {
			return errSelfFollow
		}
		for _, f := range st.follows {
			if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
				return repositories.ErrDuplicate
			}
		}
		now := r.s.now()
		if follow.CreatedAt.IsZero() {
			follow.CreatedAt = now
		}
		follow.UpdatedAt = now
		stored := *follow
		stored.Follower, stored.Following = nil, nil
		st.follows[follow.ID] = stored
		st.track(follow.ID)
		return nil
	})
}

func (r followRepo) find(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var out *models.Follow
	err := r.s.read(ctx, func(st *state) error {
		for _, f := range st.follows {
			if f.FollowerID == followerID && f.FollowingID == followingID {
				out = &f
				return nil
			}
		}
		return repositories.ErrRecordNotFound
	})
	return out, err
}

func (r followRepo) GetFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	return r.find(ctx, followerID, followingID)
}

// GetFollowForUpdate needs no row lock: the transaction already holds the
// store mutex.
func (r followRepo) GetFollowForUpdate(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	return r.find(ctx, followerID, followingID)
}

func (r followRepo) AcceptFollow(ctx context.Context, id string) (bool, error) {
	var accepted bool
	err := r.s.write(ctx, func(st *state) error {
		f, ok := st.follows[id]
		if !ok || f.Accepted {
			return nil
		}
		f.Accepted = true
		f.UpdatedAt = r.s.now()
		st.follows[id] = f
		accepted = true
		return nil
	})
	return accepted, err
}

func (r followRepo) DeleteFollow(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.s.write(ctx, func(st *state) error {
		if _, ok := st.follows[id]; !ok {
			return nil
		}
		delete(st.follows, id)
		deleted = true
		return nil
	})
	return deleted, err
}

func (r followRepo) list(ctx context.Context, page models.PageRequest, match func(models.Follow) bool) ([]models.Follow, error) {
	var out []models.Follow
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.Follow
		for _, f := range st.follows {
			if match(f) {
				matched = append(matched, f)
			}
		}
		newestFirst(st, matched, followKey)
		out = paginate(matched, page)
		return nil
	})
	return out, err
}

func (r followRepo) ListFollowers(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, page, func(f models.Follow) bool { return f.FollowingID == userID && f.Accepted })
}

func (r followRepo) ListFollowing(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, page, func(f models.Follow) bool { return f.FollowerID == userID && f.Accepted })
}

func (r followRepo) ListPending(ctx context.Context, userID string, page models.PageRequest) ([]models.Follow, error) {
	return r.list(ctx, page, func(f models.Follow) bool { return f.FollowingID == userID && !f.Accepted })
}
