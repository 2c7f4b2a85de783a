/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"reflect"
	"time"

	"github.com/tomoncle/tombstone/database"
	"github.com/tomoncle/tombstone/domain"
	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/mapper"
	"github.com/tomoncle/tombstone/types"
)

// GenericRepository runs entity operations for E on a Store of model M.
// Every read excludes soft-deleted rows and every store failure is returned as
// a typed error with a fixed message; the native error is kept only as a
// reportable cause.
type GenericRepository[E any, M any] struct {
	store  Store[M]
	mapper mapper.Mapper[E, M]
	schema Schema
	logger database.Logger
	now    func() time.Time
}

// Option configures a GenericRepository.
type Option func(*options)

type options struct {
	schema Schema
	logger database.Logger
	now    func() time.Time
}

// WithSchema overrides DefaultSchema.
func WithSchema(s Schema) Option {
	return func(o *options) { o.schema = s }
}

// WithLogger overrides database.GetLogger.
func WithLogger(l database.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source used for soft deletes.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewGenericRepository returns a repository over store using m for translation.
func NewGenericRepository[E any, M any](store Store[M], m mapper.Mapper[E, M], opts ...Option) *GenericRepository[E, M] {
	o := options{schema: DefaultSchema(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}
	return &GenericRepository[E, M]{
		store:  store,
		mapper: m,
		schema: o.schema,
		logger: o.logger,
		now:    o.now,
	}
}

func (r *GenericRepository[E, M]) Schema() Schema { return r.schema }

// Find returns the live entities matching q.
func (r *GenericRepository[E, M]) Find(ctx context.Context, q types.Query) ([]E, error) {
	return r.find(ctx, q, ierr.MsgFindFailed)
}

// FindAll returns every live entity.
func (r *GenericRepository[E, M]) FindAll(ctx context.Context) ([]E, error) {
	return r.find(ctx, types.Query{}, ierr.MsgFindAllFailed)
}

// FindOne returns the first live entity matching q. The bool is false when
// nothing matched.
func (r *GenericRepository[E, M]) FindOne(ctx context.Context, q types.Query) (E, bool, error) {
	var zero E
	row, err := r.store.FindOne(ctx, MergeSoftDelete(r.schema, q))
	if err != nil {
		return zero, false, r.storeError(ctx, "find one", ierr.MsgFindOneFailed, ierr.ErrStoreQueryFailed, err)
	}
	if row == nil {
		return zero, false, nil
	}
	e, err := r.toDomain(row)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// FindOneOrFail is FindOne with absence reported as ierr.ErrNotFound. Without
// a query it returns the first live entity.
func (r *GenericRepository[E, M]) FindOneOrFail(ctx context.Context, q ...types.Query) (E, error) {
	var query types.Query
	if len(q) > 0 {
		query = q[0]
	}
	e, ok, err := r.FindOne(ctx, query)
	if err != nil {
		return e, err
	}
	if !ok {
		return e, ierr.NewError(ierr.MsgNotFound).Mark(ierr.ErrNotFound)
	}
	return e, nil
}

// Count returns the number of live entities matching q's Where.
func (r *GenericRepository[E, M]) Count(ctx context.Context, q types.Query) (int, error) {
	n, err := r.store.Count(ctx, MergeSoftDelete(r.schema, q))
	if err != nil {
		return 0, r.storeError(ctx, "count", ierr.MsgCountFailed, ierr.ErrStoreQueryFailed, err)
	}
	return n, nil
}

// Page returns one page of live entities plus the total match count.
func (r *GenericRepository[E, M]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[E], error) {
	if req == nil {
		req = types.NewDefaultPageRequest(1, 0)
	}
	pagination := types.NewDefaultPagination[E](req.GetPage(), req.GetPageSize())
	total, err := r.Count(ctx, types.NewQuery(req.GetWhere()))
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}
	items, err := r.Find(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

// Save writes e and returns the model that was persisted.
func (r *GenericRepository[E, M]) Save(ctx context.Context, e E) (*M, error) {
	row := r.mapper.ToPersistence(e)
	if err := r.store.Save(ctx, row); err != nil {
		return nil, r.storeError(ctx, "save", ierr.MsgSaveFailed, ierr.ErrStoreWriteFailed, err)
	}
	r.logger.Debug("entity saved", withCorrelation(ctx, "entity", modelName[M]())...)
	return row, nil
}

// SoftDelete sets both delete markers of the live entity id, recording actor.
// An empty actor falls back to the user carried by ctx.
func (r *GenericRepository[E, M]) SoftDelete(ctx context.Context, id any, actor string) error {
	actor = domain.ActorFrom(ctx, actor)
	if actor == "" {
		return ierr.NewError("audit: deletedBy must not be blank").
			WithDetails(map[string]any{"id": id}).
			Mark(ierr.ErrInvalidAuditState)
	}
	ok, err := r.store.MarkDeleted(ctx, id, actor, r.now())
	if err != nil {
		return r.storeError(ctx, "soft delete", ierr.MsgDeleteFailed, ierr.ErrStoreWriteFailed, err)
	}
	if !ok {
		return ierr.NewError(ierr.MsgNotFound).
			WithDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	r.logger.Debug("entity soft deleted", withCorrelation(ctx, "entity", modelName[M](), "id", id, "actor", actor)...)
	return nil
}

func (r *GenericRepository[E, M]) find(ctx context.Context, q types.Query, msg string) ([]E, error) {
	rows, err := r.store.Find(ctx, MergeSoftDelete(r.schema, q))
	if err != nil {
		return nil, r.storeError(ctx, "find", msg, ierr.ErrStoreQueryFailed, err)
	}
	out := make([]E, 0, len(rows))
	for _, row := range rows {
		e, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *GenericRepository[E, M]) toDomain(row *M) (E, error) {
	e, err := r.mapper.ToDomain(row)
	if err != nil {
		r.logger.Error("stored entity failed validation", "entity", modelName[M](), "error", err)
		return e, ierr.Wrap(err, ierr.MsgCorruptedModel)
	}
	return e, nil
}

// storeError logs the native error and returns a typed error carrying msg.
func (r *GenericRepository[E, M]) storeError(ctx context.Context, op, msg string, kind error, cause error) error {
	fields := withCorrelation(ctx, "op", op, "entity", modelName[M](), "error", cause)
	if ok, sqlErr := database.IsSqlError(cause); ok {
		fields = append(fields, "sql_error", sqlErr)
	}
	r.logger.Error(msg, fields...)
	return ierr.NewError(msg).WithCause(cause).Mark(kind)
}

func withCorrelation(ctx context.Context, fields ...interface{}) []interface{} {
	if rc, ok := domain.RequestContextFrom(ctx); ok && rc.CorrelationID != "" {
		fields = append(fields, "correlation_id", rc.CorrelationID)
	}
	return fields
}

func modelName[M any]() string {
	return reflect.TypeOf((*M)(nil)).Elem().Name()
}
