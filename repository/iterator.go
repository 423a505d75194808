package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Iterator is a single-pass cursor over query results. It is finite (the
// composer bounds it with LIMIT), non-restartable, and releases the
// underlying rows as soon as iteration ends for any reason — including
// context cancellation mid-iteration. Re-running the query requires a new
// GetAll call.
type Iterator[T any] struct {
	db   *gorm.DB
	rows *sql.Rows
	ctx  context.Context
	err  error
	done bool
}

func newIterator[T any](ctx context.Context, q *gorm.DB) (*Iterator[T], error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	return &Iterator[T]{db: q, rows: rows, ctx: ctx}, nil
}

func emptyIterator[T any]() *Iterator[T] {
	return &Iterator[T]{done: true}
}

// Next returns the next entity, or (nil, false) when the sequence ends.
// Check Err afterwards to distinguish exhaustion from failure.
func (it *Iterator[T]) Next() (*T, bool) {
	if it.done {
		return nil, false
	}
	select {
	case <-it.ctx.Done():
		it.err = it.ctx.Err()
		it.Close()
		return nil, false
	default:
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		it.Close()
		return nil, false
	}
	var item T
	if err := it.db.ScanRows(it.rows, &item); err != nil {
		it.err = err
		it.Close()
		return nil, false
	}
	return &item, true
}

func (it *Iterator[T]) Err() error {
	return it.err
}

func (it *Iterator[T]) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	if it.rows != nil {
		return it.rows.Close()
	}
	return nil
}

// Collect drains the iterator into a slice. Convenience for HTTP handlers
// that render a whole page at once.
func (it *Iterator[T]) Collect() ([]*T, error) {
	defer it.Close()
	var out []*T
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, item)
	}
	if it.err != nil {
		return nil, it.err
	}
	return out, nil
}
