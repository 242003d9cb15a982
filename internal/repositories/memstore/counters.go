package memstore

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type counterRepo struct{ s *Store }

func clampAdd(v, delta int) int {
	return max(v+delta, 0)
}

func (r counterRepo) Adjust(ctx context.Context, field repositories.CounterField, id string, delta int) error {
	return r.s.write(ctx, func(st *state) error {
		switch field {
		case repositories.UserFollowers, repositories.UserFollowing, repositories.UserPosts:
			u, ok := st.users[id]
			if !ok {
				return repositories.ErrRecordNotFound
			}
			switch field {
			case repositories.UserFollowers:
				u.FollowersCount = clampAdd(u.FollowersCount, delta)
			case repositories.UserFollowing:
				u.FollowingCount = clampAdd(u.FollowingCount, delta)
			default:
				u.PostsCount = clampAdd(u.PostsCount, delta)
			}
			st.users[id] = u
		case repositories.PostLikes, repositories.PostComments, repositories.PostShares:
			p, ok := st.posts[id]
			if !ok {
				return repositories.ErrRecordNotFound
			}
			switch field {
			case repositories.PostLikes:
				p.LikesCount = clampAdd(p.LikesCount, delta)
			case repositories.PostComments:
				p.CommentsCount = clampAdd(p.CommentsCount, delta)
			default:
				p.ShareCount = clampAdd(p.ShareCount, delta)
			}
			st.posts[id] = p
		case repositories.CommentReplies:
			c, ok := st.comments[id]
			if !ok {
				return repositories.ErrRecordNotFound
			}
			c.RepliesCount = clampAdd(c.RepliesCount, delta)
			st.comments[id] = c
		default:
			return fmt.Errorf("unknown counter field %s", field)
		}
		return nil
	})
}
