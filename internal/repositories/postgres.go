package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
)

// PostgresStore implements Store on top of GORM and PostgreSQL
type PostgresStore struct {
	db   *gorm.DB
	inTx bool
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AutoMigrate creates or updates the tables backing the store
func (s *PostgresStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	); err != nil {
		return err
	}
	// GORM has no tag for a cross-column check.
	return s.db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_follows_not_self') THEN
			ALTER TABLE follows ADD CONSTRAINT chk_follows_not_self CHECK (follower_id <> following_id);
		END IF;
	END $$;`).Error
}

func (s *PostgresStore) Users() UserRepository       { return NewPostgresUserRepository(s.db) }
func (s *PostgresStore) Posts() PostRepository       { return NewPostgresPostRepository(s.db) }
func (s *PostgresStore) Follows() FollowRepository   { return NewPostgresFollowRepository(s.db) }
func (s *PostgresStore) Likes() LikeRepository       { return NewPostgresLikeRepository(s.db) }
func (s *PostgresStore) Comments() CommentRepository { return NewPostgresCommentRepository(s.db) }
func (s *PostgresStore) Notifications() NotificationRepository {
	return NewPostgresNotificationRepository(s.db)
}
func (s *PostgresStore) Counters() CounterRepository { return NewPostgresCounterRepository(s.db) }

// Transaction runs fn inside a database transaction, retrying the whole
// transaction on serialization failures and deadlocks. Nested calls join
// the outer transaction.
func (s *PostgresStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return retryTransaction(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&PostgresStore{db: tx, inTx: true})
		})
	})
}
