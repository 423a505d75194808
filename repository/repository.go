package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkbenefits/benefits_backend/utils"
	"gorm.io/gorm"
)

// Record is implemented (with pointer receivers) by every persisted entity.
type Record interface {
	Queryable
	GetID() int
	GetLockVersion() int
	SetLockVersion(int)
}

// recordOf ties the pointer type to its element type so the repository can
// allocate values and still call Record methods on them.
type recordOf[T any] interface {
	*T
	Record
}

// Repository is the single storage-facing contract, implemented once and
// instantiated per entity type. It owns no state beyond the shared gorm
// handle; every call is independent.
type Repository[T any, P recordOf[T]] struct {
	db *gorm.DB
}

func New[T any, P recordOf[T]](db *gorm.DB) *Repository[T, P] {
	return &Repository[T, P]{db: db}
}

// Add persists the entity and returns it with the generated identifier
// populated.
func (r *Repository[T, P]) Add(ctx context.Context, entity P) (P, error) {
	if r.db == nil {
		return nil, utils.ErrorStoreUnavailable
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, utils.Classify(err)
	}
	return entity, nil
}

// Get is a single-key lookup. Absent ids return ErrorRecordNotFound.
func (r *Repository[T, P]) Get(ctx context.Context, id int) (P, error) {
	if r.db == nil {
		return nil, utils.ErrorStoreUnavailable
	}
	var out T
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, utils.Classify(err)
	}
	return P(&out), nil
}

// Update is a full-entity replace guarded by the lock_version column: the
// UPDATE only applies when the stored version still matches the one the
// caller read. Zero affected rows means the record was deleted or modified
// concurrently, surfaced as ErrorConflict so the caller can re-read and
// retry.
func (r *Repository[T, P]) Update(ctx context.Context, entity P) (int64, error) {
	if r.db == nil {
		return 0, utils.ErrorStoreUnavailable
	}
	readVersion := entity.GetLockVersion()
	entity.SetLockVersion(readVersion + 1)

	res := r.db.WithContext(ctx).
		Model(entity).
		Where("id = ? AND lock_version = ?", entity.GetID(), readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(entity)
	if res.Error != nil {
		entity.SetLockVersion(readVersion)
		return 0, utils.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		entity.SetLockVersion(readVersion)
		return 0, utils.ErrorConflict
	}
	return res.RowsAffected, nil
}

// Delete removes the record and returns the prior value, or
// ErrorRecordNotFound when nothing was there to remove.
func (r *Repository[T, P]) Delete(ctx context.Context, id int) (P, error) {
	prior, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return nil, utils.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with a concurrent delete.
		return nil, utils.ErrorRecordNotFound
	}
	return prior, nil
}

// GetAll composes the caller's paging/sort/search options against the
// entity's declared metadata and returns a single-use iterator producing at
// most limit items. An offset past the end yields an empty iterator, not an
// error.
func (r *Repository[T, P]) GetAll(ctx context.Context, paging PagingOptions, sorts []SortOption, searches []SearchOption) (*Iterator[T], error) {
	if r.db == nil {
		return nil, utils.ErrorStoreUnavailable
	}
	var zero T
	q, err := Compose(r.db.WithContext(ctx).Model(new(T)), P(&zero), paging, sorts, searches)
	if err != nil {
		return nil, err
	}
	it, err := newIterator[T](ctx, q)
	if err != nil {
		return nil, utils.Classify(err)
	}
	return it, nil
}

// GetAllByName does a case-insensitive substring match on the entity's
// canonical name column. Entities without a name column return an empty
// iterator rather than erroring.
func (r *Repository[T, P]) GetAllByName(ctx context.Context, name string) (*Iterator[T], error) {
	if r.db == nil {
		return nil, utils.ErrorStoreUnavailable
	}
	var zero T
	column := P(&zero).NameColumn()
	if column == "" {
		return emptyIterator[T](), nil
	}
	q := r.db.WithContext(ctx).
		Model(new(T)).
		Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), "%"+strings.ToLower(name)+"%").
		Order(column + " ASC").
		Order("id ASC")
	it, err := newIterator[T](ctx, q)
	if err != nil {
		return nil, utils.Classify(err)
	}
	return it, nil
}

// First returns the single record matching an equality predicate on a
// declared searchable column, or ErrorRecordNotFound. The ingestion
// workflow resolves business keys (member number, service code) this way.
func (r *Repository[T, P]) First(ctx context.Context, field string, value string) (P, error) {
	it, err := r.GetAll(ctx, PagingOptions{Limit: 1}, nil, []SearchOption{{Field: field, Value: value}})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	item, ok := it.Next()
	if !ok {
		if it.Err() != nil {
			return nil, utils.Classify(it.Err())
		}
		return nil, utils.ErrorRecordNotFound
	}
	return P(item), nil
}

// IsNotFound reports whether err is the not-found outcome, which callers
// treat as a normal result rather than a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, utils.ErrorRecordNotFound)
}
