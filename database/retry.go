// retry.go - Bounded retry for writes that hit a held database lock

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-forecast-backend/metrics"
	"go-forecast-backend/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	WriteAttempts = 5                      // Total tries per write, including the first
	WritePause    = 100 * time.Millisecond // Fixed pause between tries, no jitter
)

// LockRetrier runs a single write and repeats it while the store reports a
// held lock. Any other failure is returned at once.
type LockRetrier struct {
	attempts int
	pause    time.Duration
	isLocked func(error) bool
	logger   *slog.Logger
}

// NewLockRetrier returns a retrier with the fixed policy: WriteAttempts tries,
// WritePause apart.
func NewLockRetrier(logger *slog.Logger) *LockRetrier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockRetrier{
		attempts: WriteAttempts,
		pause:    WritePause,
		isLocked: IsLocked,
		logger:   logger,
	}
}

// Do calls write until it succeeds, fails with a non-lock error, or the
// attempts run out. Exhaustion returns an error matching models.ErrStorageLocked
// that also wraps the last driver error.
func (r *LockRetrier) Do(ctx context.Context, write func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = write()
		if err == nil || !r.isLocked(err) {
			return err
		}
		if attempt == r.attempts {
			break
		}

		metrics.LockRetries.Inc()
		r.logger.WarnContext(ctx, "database is locked, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("pause", r.pause),
		)

		timer := time.NewTimer(r.pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("write abandoned while locked: %w", ctx.Err())
		case <-timer.C:
		}
	}

	metrics.LockExhausted.Inc()
	r.logger.ErrorContext(ctx, "database still locked, giving up", slog.Int("attempts", r.attempts))
	return fmt.Errorf("%w after %d attempts: %w", models.ErrStorageLocked, r.attempts, err)
}

// IsLocked reports whether err means another writer held the lock at the
// moment of the attempt.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" || pgErr.Code == "40P01" // lock_not_available, deadlock_detected
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
