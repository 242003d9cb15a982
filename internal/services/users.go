package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"go.uber.org/zap"
)

// UserService provisions and edits profiles. Counters are never written
// here.
type UserService struct {
	store  repositories.Store
	logger *zap.Logger
	pager  pager
}

// NewUserService creates a UserService
func NewUserService(store repositories.Store, logger *zap.Logger, p pager) *UserService {
	return &UserService{store: store, logger: logger.Named("user_service"), pager: p}
}

// CreateUser provisions the profile of an authenticated subject
func (s *UserService) CreateUser(ctx context.Context, userID string, req models.CreateUserRequest) (*models.User, error) {
	const op = "users/CreateUser"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID))

	username := strings.TrimSpace(req.Username)
	if userID == "" || username == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user id and username are required")
	}

	user := &models.User{
		ID:          userID,
		Username:    username,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		IsPrivate:   req.IsPrivate,
	}
	if err := s.store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fail(op, apperrors.ErrAlreadyExists, "profile or username already exists")
		}
		return nil, failure(lg, op, err)
	}

	lg.Info("User created")
	return user, nil
}

// GetUser returns a profile with its counters
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "users/GetUser"

	if userID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user id is required")
	}
	user, err := existingUser(ctx, s.store, op, userID)
	if err != nil {
		return nil, failure(s.logger.With(zap.String("op", op)), op, err)
	}
	return user, nil
}

// UpdateUser edits display fields and the privacy flag. Making a profile
// public leaves pending requests pending.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	const op = "users/UpdateUser"
	lg := s.logger.With(zap.String("op", op), zap.String("user_id", userID))

	if userID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user id is required")
	}

	var updated *models.User
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		user, err := existingUser(ctx, tx, op, userID)
		if err != nil {
			return err
		}
		if req.DisplayName != nil {
			user.DisplayName = strings.TrimSpace(*req.DisplayName)
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.AvatarURL != nil {
			user.AvatarURL = *req.AvatarURL
		}
		if req.IsPrivate != nil {
			user.IsPrivate = *req.IsPrivate
		}
		if err := tx.Users().UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, failure(lg, op, err)
	}

	lg.Info("User updated")
	return updated, nil
}

// SearchUsers returns the profiles whose username or display name contains
// query, ignoring case
func (s *UserService) SearchUsers(ctx context.Context, query string, page, limit int) ([]models.UserCompact, error) {
	const op = "users/SearchUsers"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "search query is required")
	}
	req, err := s.pager.request(op, page, limit)
	if err != nil {
		return nil, err
	}

	users, err := s.store.Users().SearchUsers(ctx, query, req)
	if err != nil {
		return nil, failure(s.logger.With(zap.String("op", op)), op, err)
	}
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out, nil
}
