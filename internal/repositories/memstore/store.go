// Package memstore is an in-process implementation of repositories.Store.
// Transactions are serialized by one mutex and applied to a private copy of
// the state, which replaces the shared state only on commit. Reads outside a
// transaction take the read lock and never observe a partial commit.
package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
)

type state struct {
	users         map[string]models.User
	posts         map[string]models.Post
	follows       map[string]models.Follow
	likes         map[string]models.Like
	comments      map[string]models.Comment
	notifications map[string]models.Notification

	// insertion order, used to break CreatedAt ties
	order map[string]uint64
	seq   uint64
}

func newState() *state {
	return &state{
		users:         make(map[string]models.User),
		posts:         make(map[string]models.Post),
		follows:       make(map[string]models.Follow),
		likes:         make(map[string]models.Like),
		comments:      make(map[string]models.Comment),
		notifications: make(map[string]models.Notification),
		order:         make(map[string]uint64),
	}
}

func (st *state) clone() *state {
	return &state{
		users:         maps.Clone(st.users),
		posts:         maps.Clone(st.posts),
		follows:       maps.Clone(st.follows),
		likes:         maps.Clone(st.likes),
		comments:      maps.Clone(st.comments),
		notifications: maps.Clone(st.notifications),
		order:         maps.Clone(st.order),
		seq:           st.seq,
	}
}

func (st *state) track(id string) {
	st.seq++
	st.order[id] = st.seq
}

// Store is the in-memory unit of work
type Store struct {
	mu   *sync.RWMutex
	data *state
	inTx bool
	now  func() time.Time
}

var _ repositories.Store = (*Store)(nil)

// New returns an empty store
func New() *Store {
	return &Store{
		mu:   &sync.RWMutex{},
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for CreatedAt/UpdatedAt
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Posts() repositories.PostRepository                 { return postRepo{s} }
func (s *Store) Follows() repositories.FollowRepository             { return followRepo{s} }
func (s *Store) Likes() repositories.LikeRepository                 { return likeRepo{s} }
func (s *Store) Comments() repositories.CommentRepository           { return commentRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository { return notificationRepo{s} }
func (s *Store) Counters() repositories.CounterRepository           { return counterRepo{s} }

// Transaction runs fn against a copy of the state and publishes the copy
// when fn returns nil. Nested calls join the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s.data)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write applies a single statement. Outside a transaction it runs on a copy
// so a failing statement leaves nothing behind.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// newestFirst sorts by CreatedAt descending, then by insertion order descending
func newestFirst[T any](st *state, items []T, key func(T) (time.Time, string)) {
	slices.SortFunc(items, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := bt.Compare(at); c != 0 {
			return c
		}
		return cmp.Compare(st.order[bid], st.order[aid])
	})
}

func paginate[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if page.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
