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

	"github.com/tomoncle/tombstone/types"
)

// QueryRepository reads live entities.
type QueryRepository[E any] interface {
	Find(ctx context.Context, q types.Query) ([]E, error)

	FindOne(ctx context.Context, q types.Query) (E, bool, error)

	FindOneOrFail(ctx context.Context, q ...types.Query) (E, error)

	FindAll(ctx context.Context) ([]E, error)

	Count(ctx context.Context, q types.Query) (int, error)
}

// PageQueryRepository defines pagination over live entities.
type PageQueryRepository[E any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[E], error)
}

// CommandRepository writes entities.
type CommandRepository[E any, M any] interface {
	Save(ctx context.Context, e E) (*M, error)
	SoftDelete(ctx context.Context, id any, actor string) error
}

// Repository combines queries, pagination and commands.
type Repository[E any, M any] interface {
	QueryRepository[E]
	PageQueryRepository[E]
	CommandRepository[E, M]
}

var _ Repository[struct{}, struct{}] = (*GenericRepository[struct{}, struct{}])(nil)
