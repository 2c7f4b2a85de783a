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
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection, running migrations, initializing data, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	RunMigrations(ctx context.Context) error
	InitData(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Database types.
const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Postgres driver choices.
const (
	DriverPQ  = "pq"
	DriverPGX = "pgx"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `json:"type" yaml:"type" envconfig:"TYPE"` // postgres, mysql, sqlite
	Driver              string        `json:"driver" yaml:"driver" envconfig:"DRIVER"` // postgres only: pq or pgx
	Host                string        `json:"host" yaml:"host" envconfig:"HOST"`
	Port                int           `json:"port" yaml:"port" envconfig:"PORT"`
	Username            string        `json:"username" yaml:"username" envconfig:"USERNAME"`
	Password            string        `json:"password" yaml:"password" envconfig:"PASSWORD"`
	DBName              string        `json:"dbname" yaml:"dbname" envconfig:"NAME"` // sqlite: file path, ":memory:" or empty for memory
	SSLMode             string        `json:"sslmode" yaml:"sslmode" envconfig:"SSLMODE"`
	MaxIdleConns        int           `json:"max_idle_conns" yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	MaxOpenConns        int           `json:"max_open_conns" yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME"`
	ConnectTimeout      time.Duration `json:"connect_timeout" yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
	ReadTimeout         time.Duration `json:"read_timeout" yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout        time.Duration `json:"write_timeout" yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	EnableReconnect     bool          `json:"enable_reconnect" yaml:"enable_reconnect" envconfig:"ENABLE_RECONNECT"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" yaml:"reconnect_interval" envconfig:"RECONNECT_INTERVAL"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries" envconfig:"MAX_RECONNECT_TRIES"`
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval" envconfig:"HEALTH_CHECK_INTERVAL"`
	EnableQueryLog      bool          `json:"enable_query_log" yaml:"enable_query_log" envconfig:"ENABLE_QUERY_LOG"`
	SlowQueryTime       time.Duration `json:"slow_query_time" yaml:"slow_query_time" envconfig:"SLOW_QUERY_TIME"`
	Charset             string        `json:"charset" yaml:"charset" envconfig:"CHARSET"` // MySQL: utf8mb4, Postgres: UTF8
}

// DataMigrateConfig controls schema migration behavior on startup.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool `json:"enable_migrate_on_startup" yaml:"enable_migrate_on_startup" envconfig:"MIGRATE_ON_STARTUP"`
	// CreateSoftDeleteIndexes adds an index over the delete markers of every
	// registered model.
	CreateSoftDeleteIndexes bool `json:"create_soft_delete_indexes" yaml:"create_soft_delete_indexes" envconfig:"SOFT_DELETE_INDEXES"`
	// DeletedByColumn and DeletedAtColumn name the indexed delete markers.
	// Empty values use the shared audit column names.
	DeletedByColumn string `json:"deleted_by_column" yaml:"deleted_by_column" envconfig:"SOFT_DELETE_BY_COLUMN"`
	DeletedAtColumn string `json:"deleted_at_column" yaml:"deleted_at_column" envconfig:"SOFT_DELETE_AT_COLUMN"`
}

// SoftDeleteColumns returns the delete marker columns, applying defaults.
func (c DataMigrateConfig) SoftDeleteColumns() (deletedBy, deletedAt string) {
	deletedBy, deletedAt = c.DeletedByColumn, c.DeletedAtColumn
	if deletedBy == "" {
		deletedBy = DeletedByColumn
	}
	if deletedAt == "" {
		deletedAt = DeletedDateTimeColumn
	}
	return deletedBy, deletedAt
}

// DataInitConfig controls data seeding behavior and environment selection.
type DataInitConfig struct {
	AutoInitOnStartup   bool   `json:"auto_init_on_startup" yaml:"auto_init_on_startup" envconfig:"INIT_ON_STARTUP"`
	AutoInitOnMigration bool   `json:"auto_init_on_migration" yaml:"auto_init_on_migration" envconfig:"INIT_ON_MIGRATION"`
	Filepath            string `json:"filepath" yaml:"filepath" envconfig:"INIT_FILEPATH"`
	Environment         string `json:"environment" yaml:"environment" envconfig:"INIT_ENVIRONMENT"`
}

// Config aggregates connection, migration, and data initialization settings.
type Config struct {
	ConnectionConfig  ConnectionConfig  `json:"connection_config" yaml:"connection_config"`
	DataMigrateConfig DataMigrateConfig `json:"data_migrate_config" yaml:"data_migrate_config"`
	DataInitConfig    DataInitConfig    `json:"data_init_config" yaml:"data_init_config"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Driver:              DriverPQ,
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns a Config with DefaultConnectionConfig and soft-delete
// indexes enabled.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig:  *DefaultConnectionConfig(),
		DataMigrateConfig: DataMigrateConfig{CreateSoftDeleteIndexes: true},
	}
}
