// ABOUTME: Query state returned by journal reads.
// ABOUTME: Wraps the shared cache so failures surface as state rather than panics.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/2389-research/chainjournal/internal/querycache"
)

// Status is the lifecycle state of a query.
type Status string

const (
	StatusPending Status = "pending" // never loaded, or invalidated and not yet reloaded
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Query is the result of a read: data on success, a *RemoteQueryError on failure.
type Query[T any] struct {
	Key       querycache.Key
	Status    Status
	Data      T
	Err       error
	FetchedAt time.Time
}

// IsSuccess reports whether the query holds data.
func (q Query[T]) IsSuccess() bool {
	return q.Status == StatusSuccess
}

// IsError reports whether the query failed.
func (q Query[T]) IsError() bool {
	return q.Status == StatusError
}

func fetchQuery[T any](ctx context.Context, p *Program, key querycache.Key, load func(context.Context) (T, error)) Query[T] {
	entry, err := p.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		p.logger.Warn("query failed", slog.String("key", key.String()), slog.Any("error", err))
		return Query[T]{Key: key, Status: StatusError, Err: &RemoteQueryError{Key: key, Err: err}}
	}
	p.logger.Debug("query served", slog.String("key", key.String()), slog.Time("fetched_at", entry.FetchedAt))
	return Query[T]{Key: key, Status: StatusSuccess, Data: entry.Value.(T), FetchedAt: entry.FetchedAt}
}

func peekQuery[T any](p *Program, key querycache.Key) Query[T] {
	entry, ok := p.cache.Peek(key)
	if !ok {
		return Query[T]{Key: key, Status: StatusPending}
	}
	return Query[T]{Key: key, Status: StatusSuccess, Data: entry.Value.(T), FetchedAt: entry.FetchedAt}
}
