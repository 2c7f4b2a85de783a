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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/tombstone/domain"
	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/mapper"
	"github.com/tomoncle/tombstone/model"
	"github.com/tomoncle/tombstone/types"
)

var (
	created = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deleted = created.Add(24 * time.Hour)
)

func newTestRepo(store Store[model.User], logger *recordingLogger) *GenericRepository[*domain.User, model.User] {
	return NewGenericRepository[*domain.User, model.User](store, mapper.NewUserMapper(),
		WithLogger(logger),
		WithClock(func() time.Time { return deleted }),
	)
}

func mustUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.RegisterUser(email, "", role, "system", created)
	require.NoError(t, err)
	return u
}

func TestEveryReadCarriesSoftDeleteFilter(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	repo := newTestRepo(store, &recordingLogger{})
	caller := types.NewQuery(types.Predicate{"deleted_by": types.Eq("admin"), "role": types.Eq("USER")})

	reads := map[string]func(){
		"Find":          func() { _, _ = repo.Find(ctx, caller) },
		"FindOne":       func() { _, _, _ = repo.FindOne(ctx, caller) },
		"FindOneOrFail": func() { _, _ = repo.FindOneOrFail(ctx, caller) },
		"FindAll":       func() { _, _ = repo.FindAll(ctx) },
		"Count":         func() { _, _ = repo.Count(ctx, caller) },
	}
	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			read()
			q := store.lastQuery()
			assert.True(t, IsSoftDeleteFiltered(DefaultSchema(), q))
			assert.Equal(t, types.IsNull(), q.Where["deleted_by"])
		})
	}
	assert.Equal(t, types.Eq("admin"), caller.Where["deleted_by"])
}

func TestFindExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	repo := newTestRepo(store, &recordingLogger{})

	live := mustUser(t, "live@example.com", domain.RoleUser)
	gone := mustUser(t, "gone@example.com", domain.RoleUser)
	_, err := repo.Save(ctx, live)
	require.NoError(t, err)
	_, err = repo.Save(ctx, gone)
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, gone.ID(), "admin"))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, live.ID(), all[0].ID())

	row := store.rows[gone.ID()]
	require.NotNil(t, row.DeletedBy)
	assert.Equal(t, "admin", *row.DeletedBy)
	assert.True(t, row.DeletedDateTime.Equal(deleted))
}

func TestFindStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.findErr = errors.New("pq: connection reset by peer")
	logger := &recordingLogger{}
	repo := newTestRepo(store, logger)

	_, err := repo.Find(ctx, types.Query{})
	require.Error(t, err)
	assert.True(t, ierr.IsStoreQueryFailed(err))
	assert.Equal(t, ierr.MsgFindFailed, err.Error())
	assert.False(t, errors.Is(err, store.findErr))

	_, err = repo.FindAll(ctx)
	assert.Equal(t, ierr.MsgFindAllFailed, err.Error())

	_, _, err = repo.FindOne(ctx, types.Query{})
	assert.Equal(t, ierr.MsgFindOneFailed, err.Error())
	assert.True(t, ierr.IsStoreQueryFailed(err))

	assert.Len(t, logger.errors(), 3)
}

func TestFindOneAbsence(t *testing.T) {
	repo := newTestRepo(newFakeStore(), &recordingLogger{})

	u, ok, err := repo.FindOne(context.Background(), types.NewQuery(types.Predicate{"email": types.Eq("x@y.z")}))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, u)
}

func TestFindOneOrFailNotFound(t *testing.T) {
	repo := newTestRepo(newFakeStore(), &recordingLogger{})

	_, err := repo.FindOneOrFail(context.Background())
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, ierr.MsgNotFound, err.Error())
	assert.Equal(t, 404, ierr.Code(err))
}

func TestFindOneOrFailWithQuery(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(newFakeStore(), &recordingLogger{})
	u := mustUser(t, "q@example.com", domain.RoleClient)
	_, err := repo.Save(ctx, u)
	require.NoError(t, err)

	got, err := repo.FindOneOrFail(ctx, types.NewQuery(types.Predicate{"email": types.Eq("q@example.com")}))
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())
}

func TestSaveFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.saveErr = errors.New("UNIQUE constraint failed: users.email")
	logger := &recordingLogger{}
	repo := newTestRepo(store, logger)

	row, err := repo.Save(ctx, mustUser(t, "dup@example.com", domain.RoleUser))
	assert.Nil(t, row)
	assert.True(t, ierr.IsStoreWriteFailed(err))
	assert.Equal(t, ierr.MsgSaveFailed, err.Error())
	assert.Empty(t, store.rows)

	entries := logger.errors()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].fields, "sql_error")
}

func TestSaveReturnsPersistedModel(t *testing.T) {
	repo := newTestRepo(newFakeStore(), &recordingLogger{})
	u := mustUser(t, "m@example.com", domain.RoleUser)

	row, err := repo.Save(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, u.ID(), row.ID)
	assert.Equal(t, "m@example.com", row.Email)
}

func TestCorruptedRowSurfacesError(t *testing.T) {
	store := newFakeStore()
	store.rows["bad"] = model.User{
		AuditBase: model.AuditBase{ID: "bad", CreatedDateTime: created},
		Email:     "bad@example.com",
		Role:      "USER",
	}
	repo := newTestRepo(store, &recordingLogger{})

	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidAuditState(err))
	assert.Contains(t, err.Error(), ierr.MsgCorruptedModel)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	repo := newTestRepo(store, &recordingLogger{})
	u := mustUser(t, "d@example.com", domain.RoleUser)
	_, err := repo.Save(ctx, u)
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, u.ID(), "admin"))

	err = repo.SoftDelete(ctx, u.ID(), "admin")
	assert.True(t, ierr.IsNotFound(err))

	store.deleteErr = errors.New("driver: bad connection")
	err = repo.SoftDelete(ctx, u.ID(), "admin")
	assert.True(t, ierr.IsStoreWriteFailed(err))
	assert.Equal(t, ierr.MsgDeleteFailed, err.Error())
}

func TestSoftDeleteActorFromContext(t *testing.T) {
	store := newFakeStore()
	logger := &recordingLogger{}
	repo := newTestRepo(store, logger)
	u := mustUser(t, "ctx@example.com", domain.RoleUser)
	_, err := repo.Save(context.Background(), u)
	require.NoError(t, err)

	err = repo.SoftDelete(context.Background(), u.ID(), "")
	assert.True(t, ierr.IsInvalidAuditState(err))
	assert.Nil(t, store.rows[u.ID()].DeletedBy)

	ctx := domain.WithRequestContext(context.Background(), domain.NewRequestContext("ops@example.com", "req-42"))
	require.NoError(t, repo.SoftDelete(ctx, u.ID(), ""))
	row := store.rows[u.ID()]
	require.NotNil(t, row.DeletedBy)
	assert.Equal(t, "ops@example.com", *row.DeletedBy)
	assert.Equal(t, deleted, *row.DeletedDateTime)

	store.deleteErr = errors.New("driver: bad connection")
	_ = repo.SoftDelete(ctx, u.ID(), "admin")
	logged := logger.errors()
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0].fields, "correlation_id")
	assert.Contains(t, logged[0].fields, "req-42")
}

func TestCountAndPage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	repo := newTestRepo(store, &recordingLogger{})
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := repo.Save(ctx, mustUser(t, email, domain.RoleUser))
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx, types.Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := repo.Page(ctx, types.NewDefaultPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.PageSize)

	store.countErr = errors.New("timeout")
	page, err = repo.Page(ctx, nil)
	assert.Nil(t, page)
	assert.True(t, ierr.IsStoreQueryFailed(err))
	assert.Equal(t, ierr.MsgCountFailed, err.Error())
}
