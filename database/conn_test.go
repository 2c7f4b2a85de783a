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

package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = TypeSQLite
	cfg.ConnectionConfig.DBName = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.DataMigrateConfig.EnableMigrateOnStartup = true
	return cfg
}

func TestInitDBLifecycle(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = CloseDB() })
	cfg := sqliteConfig()

	db, err := InitDB(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Same(t, db, GetDB())
	assert.Same(t, cfg, GetConfig())

	status := GetHealthStatus(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)

	exists, err := db.NewSelect().Model((*Migration)(nil)).Where("version = ?", "001_ledger_entries").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, RunMigrations(ctx))

	require.NoError(t, CloseDB())
	assert.Nil(t, GetDB())
	assert.Nil(t, GetConfig())
	assert.Equal(t, "Database not initialized", GetHealthStatus(ctx).LastError)
	assert.Error(t, RunMigrations(ctx))
	assert.Error(t, InitData(ctx))
}

func TestInitDBRejectsBadConfig(t *testing.T) {
	_, err := InitDB(nil)
	assert.Error(t, err)

	cfg := sqliteConfig()
	cfg.ConnectionConfig.Type = "oracle"
	_, err = InitDB(cfg)
	assert.Error(t, err)
}

func TestManagerConnectAndReconnect(t *testing.T) {
	ctx := context.Background()
	m := NewDatabaseManager(sqliteConfig())
	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() { _ = m.Disconnect() })

	require.NoError(t, m.Ping(ctx))
	_, err := m.GetDB().NewCreateTable().Model((*ledgerTag)(nil)).Exec(ctx)
	require.NoError(t, err)
	before := m.GetDB()

	require.NoError(t, m.Reconnect(ctx))
	require.NoError(t, m.Ping(ctx))
	assert.NotSame(t, before, m.GetDB())
	_, err = m.GetDB().NewInsert().Model(&ledgerTag{Name: "kept"}).Exec(ctx)
	require.NoError(t, err, "shared in-memory database survives the swap")
	assert.NotNil(t, m.GetSQLDB())
	assert.GreaterOrEqual(t, m.GetStats().OpenConns, 0)

	require.NoError(t, m.Disconnect())
	assert.Error(t, m.Ping(ctx))
	assert.Nil(t, m.GetDB())
}
