package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-midea/engagement/internal/apperrors"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"go.uber.org/zap"
)

// CounterLedger adjusts the denormalized aggregates of users, posts and
// comments. It only runs inside a caller's transaction.
type CounterLedger struct {
	logger *zap.Logger
}

// NewCounterLedger creates a CounterLedger
func NewCounterLedger(logger *zap.Logger) *CounterLedger {
	return &CounterLedger{logger: logger.Named("counter_ledger")}
}

// Adjust adds delta to field on the row id. The stored value never drops
// below zero.
func (l *CounterLedger) Adjust(ctx context.Context, tx repositories.Store, field repositories.CounterField, id string, delta int) error {
	const op = "counters/Adjust"

	if err := tx.Counters().Adjust(ctx, field, id, delta); err != nil {
		if notFound(err) {
			return fail(op, apperrors.ErrNotFound, fmt.Sprintf("%s target not found", field))
		}
		return err
	}

	l.logger.Debug("Counter adjusted",
		zap.Stringer("field", field),
		zap.String("id", id),
		zap.Int("delta", delta))
	return nil
}

// Increment adds one to field on id
func (l *CounterLedger) Increment(ctx context.Context, tx repositories.Store, field repositories.CounterField, id string) error {
	return l.Adjust(ctx, tx, field, id, 1)
}

// Decrement subtracts one from field on id, clamped at zero
func (l *CounterLedger) Decrement(ctx context.Context, tx repositories.Store, field repositories.CounterField, id string) error {
	return l.Adjust(ctx, tx, field, id, -1)
}
