package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type userRepo struct{ s *Store }

func (r userRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return repositories.ErrDuplicate
		}
		for _, u := range st.users {
			if u.Username == user.Username {
				return repositories.ErrDuplicate
			}
		}
		now := r.s.now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		st.users[user.ID] = *user
		st.track(user.ID)
		return nil
	})
}

func (r userRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	err := r.s.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r userRepo) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	err := r.s.read(ctx, func(st *state) error {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				out[id] = u
			}
		}
		return nil
	})
	return out, err
}

func (r userRepo) UpdateUser(ctx context.Context, user *models.User) error {
	return r.s.write(ctx, func(st *state) error {
		cur, ok := st.users[user.ID]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		cur.DisplayName = user.DisplayName
		cur.Bio = user.Bio
		cur.AvatarURL = user.AvatarURL
		cur.IsPrivate = user.IsPrivate
		cur.UpdatedAt = r.s.now()
		st.users[user.ID] = cur
		return nil
	})
}

func (r userRepo) SearchUsers(ctx context.Context, query string, page models.PageRequest) ([]models.User, error) {
	q := strings.ToLower(query)
	var out []models.User
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.User
		for _, u := range st.users {
			if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
				matched = append(matched, u)
			}
		}
		slices.SortFunc(matched, func(a, b models.User) int { return cmp.Compare(a.Username, b.Username) })
		out = paginate(matched, page)
		return nil
	})
	return out, err
}
