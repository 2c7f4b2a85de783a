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

package tombstone

import (
	"context"

	"github.com/tomoncle/tombstone/database"
	"github.com/tomoncle/tombstone/domain"
	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/mapper"
	"github.com/tomoncle/tombstone/model"
	"github.com/tomoncle/tombstone/repository"
	"github.com/tomoncle/tombstone/types"
)

// Service exposes repository operations as types.Result values. Failures
// carry the typed error message and its ierr.Code.
type Service[E any, M any] interface {
	// Find returns the live entities matching q.
	Find(ctx context.Context, q types.Query) types.Result[[]E]

	// FindOne returns the first live match; no match is a 404 failure.
	FindOne(ctx context.Context, q types.Query) types.Result[E]

	// FindOneOrFail is FindOne with an optional query.
	FindOneOrFail(ctx context.Context, q ...types.Query) types.Result[E]

	// FindAll returns every live entity.
	FindAll(ctx context.Context) types.Result[[]E]

	// Count returns the number of live entities matching q.
	Count(ctx context.Context, q types.Query) types.Result[int]

	// Page returns a page of live entities.
	Page(ctx context.Context, page *types.PageRequest) types.Result[*types.Pagination[E]]

	// Save upserts e and returns the entity rebuilt from what was stored.
	Save(ctx context.Context, e E) types.Result[E]

	// Delete soft deletes the live entity id on behalf of actor, or of the
	// domain.RequestContext user in ctx when actor is empty.
	Delete(ctx context.Context, id any, actor string) types.Result[bool]
}

type baseServiceImpl[E any, M any] struct {
	repo   repository.Repository[E, M]
	mapper mapper.Mapper[E, M]
}

// NewService returns a Service over repo. m rebuilds saved entities.
func NewService[E any, M any](repo repository.Repository[E, M], m mapper.Mapper[E, M]) Service[E, M] {
	return &baseServiceImpl[E, M]{repo: repo, mapper: m}
}

// NewDefaultService returns a Service on the global database connection. The
// connection is looked up per statement, so the service survives InitDB being
// called later and reconnects; without one every operation fails.
func NewDefaultService[E any, M any](m mapper.Mapper[E, M], opts ...repository.Option) Service[E, M] {
	store := repository.NewLazyBunStore[M](database.GetDB, repository.DefaultSchema())
	return NewService[E, M](repository.NewGenericRepository[E, M](store, m, opts...), m)
}

// NewUserService returns the default Service for users.
func NewUserService(opts ...repository.Option) Service[*domain.User, model.User] {
	return NewDefaultService[*domain.User, model.User](mapper.NewUserMapper(), opts...)
}

func (s *baseServiceImpl[E, M]) Find(ctx context.Context, q types.Query) types.Result[[]E] {
	items, err := s.repo.Find(ctx, q)
	if err != nil {
		return failure[[]E](err)
	}
	return types.Ok(items)
}

func (s *baseServiceImpl[E, M]) FindOne(ctx context.Context, q types.Query) types.Result[E] {
	e, ok, err := s.repo.FindOne(ctx, q)
	if err != nil {
		return failure[E](err)
	}
	if !ok {
		return types.Fail[E](ierr.MsgNotFound, ierr.KindNotFound.Code())
	}
	return types.Ok(e)
}

func (s *baseServiceImpl[E, M]) FindOneOrFail(ctx context.Context, q ...types.Query) types.Result[E] {
	e, err := s.repo.FindOneOrFail(ctx, q...)
	if err != nil {
		return failure[E](err)
	}
	return types.Ok(e)
}

func (s *baseServiceImpl[E, M]) FindAll(ctx context.Context) types.Result[[]E] {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return failure[[]E](err)
	}
	return types.Ok(items)
}

func (s *baseServiceImpl[E, M]) Count(ctx context.Context, q types.Query) types.Result[int] {
	n, err := s.repo.Count(ctx, q)
	if err != nil {
		return failure[int](err)
	}
	return types.Ok(n)
}

func (s *baseServiceImpl[E, M]) Page(ctx context.Context, page *types.PageRequest) types.Result[*types.Pagination[E]] {
	p, err := s.repo.Page(ctx, page)
	if err != nil {
		return failure[*types.Pagination[E]](err)
	}
	return types.Ok(p)
}

func (s *baseServiceImpl[E, M]) Save(ctx context.Context, e E) types.Result[E] {
	row, err := s.repo.Save(ctx, e)
	if err != nil {
		return failure[E](err)
	}
	saved, err := s.mapper.ToDomain(row)
	if err != nil {
		return failure[E](ierr.Wrap(err, ierr.MsgCorruptedModel))
	}
	return types.Ok(saved)
}

func (s *baseServiceImpl[E, M]) Delete(ctx context.Context, id any, actor string) types.Result[bool] {
	if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return failure[bool](err)
	}
	return types.Ok(true)
}

func failure[T any](err error) types.Result[T] {
	return types.Fail[T](err.Error(), ierr.Code(err))
}
