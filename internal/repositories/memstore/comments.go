package memstore

import (
	"context"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type commentRepo struct{ s *Store }

func commentKey(c models.Comment) (time.Time, string) { return c.CreatedAt, c.ID }

func (r commentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.comments[comment.ID]; ok {
			return repositories.ErrDuplicate
		}
		now := r.s.now()
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = now
		}
		comment.UpdatedAt = now
		stored := *comment
		stored.Author = nil
		st.comments[comment.ID] = stored
		st.track(comment.ID)
		return nil
	})
}

func (r commentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var out models.Comment
	err := r.s.read(ctx, func(st *state) error {
		c, ok := st.comments[id]
		if !ok {
			return repositories.ErrRecordNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r commentRepo) UpdateCommentContent(ctx context.Context, id, content string) error {
	return r.s.write(ctx, func(st *state) error {
		c, ok := st.comments[id]
		if !ok || c.IsDeleted {
			return repositories.ErrRecordNotFound
		}
		c.Content = content
		c.UpdatedAt = r.s.now()
		st.comments[id] = c
		return nil
	})
}

func (r commentRepo) SoftDeleteComment(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.s.write(ctx, func(st *state) error {
		c, ok := st.comments[id]
		if !ok || c.IsDeleted {
			return nil
		}
		c.IsDeleted = true
		c.UpdatedAt = r.s.now()
		st.comments[id] = c
		deleted = true
		return nil
	})
	return deleted, err
}

func (r commentRepo) list(ctx context.Context, page models.PageRequest, match func(models.Comment) bool) ([]models.Comment, error) {
	var out []models.Comment
	err := r.s.read(ctx, func(st *state) error {
		var matched []models.Comment
		for _, c := range st.comments {
			if !c.IsDeleted && match(c) {
				matched = append(matched, c)
			}
		}
		newestFirst(st, matched, commentKey)
		out = paginate(matched, page)
		return nil
	})
	return out, err
}

func (r commentRepo) ListTopLevel(ctx context.Context, postID string, page models.PageRequest) ([]models.Comment, error) {
	return r.list(ctx, page, func(c models.Comment) bool { return c.PostID == postID && !c.IsReply() })
}

func (r commentRepo) ListReplies(ctx context.Context, parentID string, page models.PageRequest) ([]models.Comment, error) {
	return r.list(ctx, page, func(c models.Comment) bool { return c.ParentID != nil && *c.ParentID == parentID })
}
