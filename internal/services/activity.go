package services

import (
	"context"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"go.uber.org/zap"
)

// ActivityHistory reads a user's own activity log
type ActivityHistory struct {
	reader activity.Reader
	logger *zap.Logger
	pager  pager
}

// NewActivityHistory creates an ActivityHistory
func NewActivityHistory(reader activity.Reader, logger *zap.Logger, p pager) *ActivityHistory {
	return &ActivityHistory{reader: reader, logger: logger.Named("activity_history"), pager: p}
}

// ListMine returns the newest limit actions of userID
func (s *ActivityHistory) ListMine(ctx context.Context, userID string, limit int) ([]activity.Event, error) {
	const op = "activity/ListMine"

	if userID == "" {
		return nil, fail(op, apperrors.ErrInvalidArgument, "user id is required")
	}
	req, err := s.pager.request(op, 1, limit)
	if err != nil {
		return nil, err
	}

	events, err := s.reader.ListByActor(ctx, userID, int64(req.Limit))
	if err != nil {
		return nil, failure(s.logger.With(zap.String("op", op), zap.String("user_id", userID)), op, err)
	}
	return events, nil
}
