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
	"time"

	"github.com/tomoncle/tombstone/types"
)

// Store is the storage binding a GenericRepository runs on. Implementations
// return native driver errors; the repository translates them.
type Store[M any] interface {
	// Find returns every row matching q.
	Find(ctx context.Context, q types.Query) ([]*M, error)
	// FindOne returns the first matching row, or nil and no error when none matches.
	FindOne(ctx context.Context, q types.Query) (*M, error)
	Count(ctx context.Context, q types.Query) (int, error)
	// Save inserts row or overwrites the stored row with the same primary key.
	Save(ctx context.Context, row *M) error
	// MarkDeleted sets both delete markers on a live row and reports whether
	// one was updated.
	MarkDeleted(ctx context.Context, id any, actor string, at time.Time) (bool, error)
}
