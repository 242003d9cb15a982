package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	maxElapsedTime  = 5 * time.Second
	initialInterval = 20 * time.Millisecond
	maxInterval     = 500 * time.Millisecond
	maxRetries      = uint64(5)
)

// isRetryableError reports whether a failed transaction may succeed when
// run again from the start.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected,
			pgerrcode.LockNotAvailable:
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err came from a unique constraint.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	default:
		return err
	}
}

// retryTransaction runs a whole transaction again while it keeps failing
// with serialization failures or deadlocks.
func retryTransaction(ctx context.Context, operation func(context.Context) error) error {
	var lastErr error

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)

	err := backoff.Retry(func() error {
		err := operation(ctx)
		if err != nil {
			if !isRetryableError(err) {
				return backoff.Permanent(err)
			}
			lastErr = err
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		if lastErr != nil && isRetryableError(err) {
			return errors.Join(ErrTxConflict, lastErr)
		}
		return err
	}

	return nil
}
