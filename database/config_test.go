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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "db.yaml", `
connection_config:
  type: postgres
  driver: pgx
  host: db.internal
  port: 5432
  dbname: accounts
  slow_query_time: 500ms
data_migrate_config:
  enable_migrate_on_startup: true
data_init_config:
  environment: staging
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, TypePostgres, cfg.ConnectionConfig.Type)
	assert.Equal(t, DriverPGX, cfg.ConnectionConfig.Driver)
	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectionConfig.SlowQueryTime)
	assert.True(t, cfg.DataMigrateConfig.EnableMigrateOnStartup)
	assert.True(t, cfg.DataMigrateConfig.CreateSoftDeleteIndexes)
	assert.Equal(t, "staging", cfg.DataInitConfig.Environment)
	assert.Equal(t, 100, cfg.ConnectionConfig.MaxOpenConns)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "db.yaml", "connection_config:\n  type: mysql\n  host: from-file\n")
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_INIT_ENVIRONMENT", "test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ConnectionConfig.Host)
	assert.Equal(t, 3307, cfg.ConnectionConfig.Port)
	assert.Equal(t, "test", cfg.DataInitConfig.Environment)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "bad.yaml", "connection_config:\n  type: oracle\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestLoadDotEnv(t *testing.T) {
	const key = "DB_TOMBSTONE_DOTENV_PROBE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", key+"=loaded\n")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env"), path))
	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		cfg ConnectionConfig
		ok  bool
	}{
		{ConnectionConfig{Type: TypeSQLite}, true},
		{ConnectionConfig{Type: TypeMySQL}, true},
		{ConnectionConfig{Type: TypePostgres}, true},
		{ConnectionConfig{Type: TypePostgres, Driver: DriverPGX}, true},
		{ConnectionConfig{Type: TypePostgres, Driver: "odbc"}, false},
		{ConnectionConfig{Type: ""}, false},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if c.ok {
			assert.NoError(t, err, c.cfg)
		} else {
			assert.Error(t, err, c.cfg)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", SQLiteDSN(""))
	assert.Equal(t, "file::memory:?cache=shared", SQLiteDSN(":memory:"))
	assert.Equal(t, "data/app.db", SQLiteDSN("data/app.db"))
	assert.Equal(t, "app.sqlite", SQLiteDSN("app.sqlite"))
	assert.Equal(t, "file:x?mode=memory", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "accounts.db", SQLiteDSN("accounts"))
}
