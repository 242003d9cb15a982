package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"gorm.io/gorm"
)

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetUsersByIDs loads every listed user in one query
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// UpdateUser writes the profile fields of a user. Counters are owned by the
// counter ledger and are never written here.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Select("display_name", "bio", "avatar_url", "is_private", "updated_at").
		Updates(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsers finds users whose username or display name contains query
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, page models.PageRequest) ([]models.User, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("username ILIKE ? OR display_name ILIKE ?", pattern, pattern).
		Order("username ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&users).Error
	return users, err
}
