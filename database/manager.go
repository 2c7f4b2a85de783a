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
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type defaultDatabaseManager struct {
	cfg             *Config
	config          *ConnectionConfig
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	lastHealthCheck time.Time
	healthStatus    *HealthStatus
	reconnecting    sync.Mutex
	stopHealthCheck chan struct{}
	healthCheckOnce sync.Once
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. A nil
// cfg uses DefaultConfig.
func NewDatabaseManager(cfg *Config) AbstractDatabaseManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &defaultDatabaseManager{
		cfg:             cfg,
		config:          &cfg.ConnectionConfig,
		logger:          GetLogger(),
		healthStatus:    &HealthStatus{},
		stopHealthCheck: make(chan struct{}),
	}
}

// Connect opens and pings a connection unless one is already live. The health
// loop is started on the first successful connect.
func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.connected && dm.db != nil {
		return nil
	}

	sqlDB, db, err := dm.openAndPing(ctx)
	dm.lastError = err
	if err != nil {
		return err
	}
	dm.sqlDB, dm.db, dm.connected = sqlDB, db, true

	if dm.config.HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}
	dm.logger.Info("Database connected successfully", "type", dm.config.Type, "host", dm.config.Host)
	return nil
}

func (dm *defaultDatabaseManager) openAndPing(ctx context.Context) (*sql.DB, *bun.DB, error) {
	sqlDB, db, err := dm.createConnection()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create database connection")
	}
	configureConnectionPool(sqlDB, dm.config)

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "database connection test failed")
	}
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	switch dm.config.Type {
	case TypeMySQL:
		sqlDB, db, err = dm.createMySQLConnection()
	case TypePostgres, "postgresql":
		sqlDB, db, err = dm.createPostgreSQLConnection()
	case TypeSQLite, "sqlite3":
		sqlDB, db, err = dm.createSQLiteConnection()
	default:
		return nil, nil, errors.Newf("unsupported database type: %s", dm.config.Type)
	}

	if err != nil {
		return nil, nil, err
	}

	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	db.AddQueryHook(NewErrorQueryHook(dm.logger))
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}

	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createMySQLConnection() (*sql.DB, *bun.DB, error) {
	sqlDB, err := sql.Open("mysql", MySQLDSN(dm.config))
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func (dm *defaultDatabaseManager) createPostgreSQLConnection() (*sql.DB, *bun.DB, error) {
	driverName := "postgres"
	if dm.config.Driver == DriverPGX {
		driverName = "pgx"
	}
	sqlDB, err := sql.Open(driverName, PostgresDSN(dm.config))
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, pgdialect.New()), nil
}

// MySQLDSN formats c for the go-sql-driver. Charset defaults to utf8mb4.
func MySQLDSN(c *ConnectionConfig) string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	mc := mysql.NewConfig()
	mc.User, mc.Passwd = c.Username, c.Password
	mc.Net, mc.Addr = "tcp", net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.DBName
	mc.ParseTime, mc.Loc = true, time.Local
	mc.Timeout, mc.ReadTimeout, mc.WriteTimeout = c.ConnectTimeout, c.ReadTimeout, c.WriteTimeout
	mc.Params = map[string]string{"charset": charset}
	return mc.FormatDSN()
}

// PostgresDSN formats c as a postgres URL. SSLMode defaults to disable.
func PostgresDSN(c *ConnectionConfig) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (dm *defaultDatabaseManager) createSQLiteConnection() (*sql.DB, *bun.DB, error) {
	sqlDB, err := sql.Open(sqliteshim.ShimName, SQLiteDSN(dm.config.DBName))
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// SQLiteDSN turns a configured database name into a sqlite DSN. An empty name
// or ":memory:" is a shared in-memory database; a bare name gets a .db suffix.
func SQLiteDSN(name string) string {
	switch {
	case name == "" || name == ":memory:":
		return "file::memory:?cache=shared"
	case strings.HasPrefix(name, "file:"), strings.HasSuffix(name, ".db"), strings.HasSuffix(name, ".sqlite"):
		return name
	default:
		return name + ".db"
	}
}

func configureConnectionPool(sqlDB *sql.DB, c *ConnectionConfig) {
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
}

// Disconnect stops the health loop and closes the connection.
func (dm *defaultDatabaseManager) Disconnect() error {
	select {
	case dm.stopHealthCheck <- struct{}{}:
	default:
	}

	dm.mu.Lock()
	db := dm.db
	dm.db, dm.sqlDB, dm.connected = nil, nil, false
	dm.mu.Unlock()
	return dm.closeDB(db)
}

// Reconnect opens a new connection and swaps it in before closing the old one,
// so GetDB never observes a nil database while the swap is in progress.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Attempting to reconnect to the database")

	sqlDB, db, err := dm.openAndPing(ctx)
	dm.mu.Lock()
	dm.lastError = err
	if err != nil {
		dm.mu.Unlock()
		return err
	}
	previous := dm.db
	dm.sqlDB, dm.db, dm.connected = sqlDB, db, true
	dm.mu.Unlock()

	if err := dm.closeDB(previous); err != nil {
		dm.logger.Warn("Error closing replaced connection", "error", err)
	}
	if dm.config.HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}
	return nil
}

func (dm *defaultDatabaseManager) closeDB(db *bun.DB) error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	dm.logger.Info("Database connection closed")
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return errors.New("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

// HealthCheck pings the database and records the result as the current
// health status. The ping runs without holding the manager lock.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.RLock()
	db, sqlDB := dm.db, dm.sqlDB
	dm.mu.RUnlock()

	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}
	var pingErr error
	if db == nil {
		status.LastError = "Database not initialized"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		pingErr = db.PingContext(pingCtx)
		cancel()
		status.ResponseTime = time.Since(start)
		status.Healthy, status.Connected = pingErr == nil, pingErr == nil
		if pingErr != nil {
			status.LastError = pingErr.Error()
		}
	}
	if sqlDB != nil {
		st := sqlDB.Stats()
		status.ActiveConns, status.IdleConns, status.MaxOpenConns = st.InUse, st.Idle, st.MaxOpenConnections
	}

	dm.mu.Lock()
	if db != nil {
		dm.lastError = pingErr
	} else {
		status.Connected = dm.connected
	}
	dm.healthStatus, dm.lastHealthCheck = status, start
	dm.mu.Unlock()
	return status
}

const healthPingTimeout = 5 * time.Second

func (dm *defaultDatabaseManager) startHealthCheck() {
	dm.healthCheckOnce.Do(func() { go dm.healthLoop(dm.config.HealthCheckInterval) })
}

func (dm *defaultDatabaseManager) healthLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-dm.stopHealthCheck:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*healthPingTimeout)
		healthy := dm.HealthCheck(ctx).Healthy
		cancel()
		if !healthy && dm.config.EnableReconnect {
			dm.handleReconnect()
		}
	}
}

// reconnectBackOff waits ReconnectInterval before the second attempt and grows
// exponentially after that, for at most MaxReconnectTries attempts.
func (dm *defaultDatabaseManager) reconnectBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if dm.config.ReconnectInterval > 0 {
		eb.InitialInterval = dm.config.ReconnectInterval
	}
	eb.MaxElapsedTime = 0
	tries := dm.config.MaxReconnectTries
	if tries < 1 {
		tries = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(tries-1)), ctx)
}

func (dm *defaultDatabaseManager) handleReconnect() {
	if !dm.reconnecting.TryLock() {
		return
	}
	defer dm.reconnecting.Unlock()

	try := 0
	operation := func() error {
		try++
		dm.logger.Info("Starting database reconnect", "try", try)
		ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
		defer cancel()
		return dm.Reconnect(ctx)
	}
	notify := func(err error, next time.Duration) {
		dm.logger.Error("Reconnect failed", "error", err, "try", try, "next_in", next)
	}

	if err := backoff.RetryNotify(operation, dm.reconnectBackOff(context.Background()), notify); err != nil {
		dm.logger.Error("Max reconnect attempts reached, stopping", "tries", try, "error", err)
		return
	}
	dm.logger.Info("Reconnect succeeded", "tries", try)
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	sqlDB := dm.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}
	return newDBStats(sqlDB.Stats())
}

func newDBStats(st sql.DBStats) *DBStats {
	return &DBStats{
		MaxOpenConns:      st.MaxOpenConnections,
		OpenConns:         st.OpenConnections,
		InUse:             st.InUse,
		Idle:              st.Idle,
		WaitCount:         st.WaitCount,
		WaitDuration:      st.WaitDuration,
		MaxIdleClosed:     st.MaxIdleClosed,
		MaxIdleTimeClosed: st.MaxIdleTimeClosed,
		MaxLifetimeClosed: st.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return errors.New("database not initialized")
	}
	return dm.migrationManager(db).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) InitData(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return errors.New("database not initialized")
	}
	return dm.migrationManager(db).InitData(ctx)
}

func (dm *defaultDatabaseManager) migrationManager(db *bun.DB) *MigrationManager {
	mm := NewMigrationManager(db, dm.logger)
	mm.SetMigrateConfig(dm.cfg.DataMigrateConfig)
	mm.SetInitConfig(dm.cfg.DataInitConfig)
	return mm
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
