// Package services holds the business operations behind the public site,
// the admin back-office and the espace-client. Services return the sentinel
// errors of package errs; raw database errors never leave this package.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/storage"
	"go.uber.org/zap"
)

// Clock returns the current time; services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// storeErr logs a database failure and returns the generic unavailable error.
// Record-not-found is mapped to notFound when provided.
func storeErr(log *zap.Logger, op string, err error, notFound error) error {
	if notFound != nil && db.IsNotFound(err) {
		return notFound
	}
	log.Error("database operation failed", zap.String("op", op), zap.Error(err))
	return errs.ErrUnavailable
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// objectRemover deletes storage objects after their rows are gone. Deletion is
// idempotent so it is retried; an object that still cannot be removed is
// logged as an orphan.
type objectRemover struct {
	store    storage.ObjectStore
	log      *zap.Logger
	attempts int
	backoff  time.Duration
	budget   time.Duration
	onOrphan func()
}

func newObjectRemover(store storage.ObjectStore, log *zap.Logger) *objectRemover {
	return &objectRemover{store: store, log: log, attempts: 3, backoff: 200 * time.Millisecond, budget: 30 * time.Second}
}

// remove ignores the caller's cancellation: the rows are already gone, so
// stopping with the request would only leave orphans behind. The whole
// cleanup is bounded by budget instead.
func (r *objectRemover) remove(ctx context.Context, keys ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.budget)
	defer cancel()
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := r.removeOne(ctx, key); err != nil {
			r.log.Error("storage object orphaned", zap.String("key", key), zap.Error(err))
			if r.onOrphan != nil {
				r.onOrphan()
			}
		}
	}
}

func (r *objectRemover) removeOne(ctx context.Context, key string) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = r.store.Delete(ctx, key); err == nil {
			return nil
		}
		if errors.Is(err, storage.ErrInvalidKey) || i == r.attempts-1 {
			break
		}
		timer := time.NewTimer(r.backoff * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
