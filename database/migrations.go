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
	"os"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const defaultEnvironment = "development"

// Delete marker columns shared by the model audit fields and the soft-delete
// index migration.
const (
	DeletedByColumn       = "deleted_by"
	DeletedDateTimeColumn = "deleted_date_time"
)

// MigrationManager coordinates schema migrations and data initialization.
type MigrationManager struct {
	db         *bun.DB
	logger     Logger
	migrateCfg DataMigrateConfig
	initCfg    DataInitConfig
}

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk,type:varchar(128)"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// Table migrations are versioned per table, so a model registered after
// earlier runs still gets its table and index on the next run.
const (
	createTableVersion     = "001"
	softDeleteIndexVersion = "002"
)

// NewMigrationManager constructs a MigrationManager with soft-delete indexes
// enabled and the "development" seed environment.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{
		db:         db,
		logger:     logger,
		migrateCfg: DataMigrateConfig{CreateSoftDeleteIndexes: true},
		initCfg:    DataInitConfig{Environment: defaultEnvironment},
	}
}

func (mm *MigrationManager) SetMigrateConfig(cfg DataMigrateConfig) {
	mm.migrateCfg = cfg
}

func (mm *MigrationManager) SetInitConfig(cfg DataInitConfig) {
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	mm.initCfg = cfg
}

// SetEnvironment sets the environment used when initializing data from SQL.
func (mm *MigrationManager) SetEnvironment(env string) {
	mm.initCfg.Environment = env
}

// RunMigrations creates the migration tracking table if needed and executes
// every pending migration in ascending version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if mm.db == nil {
		return errors.New("database not initialized")
	}
	if err := mm.createMigrationTable(ctx); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	migrations := mm.getAllMigrations()
	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", migration.Version)
		}
	}

	mm.logger.Info("Database migrations completed!")

	// Seeding runs outside migration transactions; applied files are tracked
	// by SQLInitManager.
	if mm.initCfg.AutoInitOnMigration {
		return mm.InitData(ctx)
	}
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// getAllMigrations returns one create-table migration per registered model in
// priority order, followed by one soft-delete index migration per table that
// carries both delete markers.
func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	models := RegisteredModelInstances()
	migrations := make([]MigrationItem, 0, 2*len(models))
	for _, model := range models {
		table := mm.tableName(model)
		migrations = append(migrations, MigrationItem{
			Version:     createTableVersion + "_" + table,
			Name:        "create_table_" + table,
			Description: "Create table for " + getModelName(model),
			Up: func(ctx context.Context, db bun.IDB) error {
				return createTable(ctx, db, model)
			},
		})
	}
	if !mm.migrateCfg.CreateSoftDeleteIndexes {
		return migrations
	}
	deletedBy, deletedAt := mm.migrateCfg.SoftDeleteColumns()
	for _, model := range models {
		table := mm.db.Dialect().Tables().Get(reflect.TypeOf(model).Elem())
		if table == nil || !table.HasField(deletedBy) || !table.HasField(deletedAt) {
			continue
		}
		migrations = append(migrations, MigrationItem{
			Version:     softDeleteIndexVersion + "_" + table.Name,
			Name:        "create_soft_delete_index_" + table.Name,
			Description: "Index the delete markers of " + table.Name,
			Up: func(ctx context.Context, db bun.IDB) error {
				return createSoftDeleteIndex(ctx, db, model, deletedBy, deletedAt)
			},
		})
	}
	return migrations
}

func (mm *MigrationManager) tableName(model interface{}) string {
	if table := mm.db.Dialect().Tables().Get(reflect.TypeOf(model).Elem()); table != nil {
		return table.Name
	}
	return getModelName(model)
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&Migration{
				Version:     migration.Version,
				Name:        migration.Name,
				AppliedAt:   time.Now(),
				Description: migration.Description,
			}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	return nil
}

func createTable(ctx context.Context, db bun.IDB, model interface{}) error {
	_, err := db.NewCreateTable().
		Model(model).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to create table %s", getModelName(model))
	}
	return nil
}

func createSoftDeleteIndex(ctx context.Context, db bun.IDB, model interface{}, deletedBy, deletedAt string) error {
	table := db.Dialect().Tables().Get(reflect.TypeOf(model).Elem())
	query := db.NewCreateIndex().
		Model(model).
		Index("idx_"+table.Name+"_soft_delete").
		Column(deletedBy, deletedAt)
	if db.Dialect().Name() != dialect.MySQL {
		query = query.IfNotExists()
	}
	if _, err := query.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to create soft delete index on %s", table.Name)
	}
	return nil
}

// InitData seeds data from SQL files outside any migration.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return errors.New("database not initialized")
	}
	sqlManager := NewSQLInitManager(mm.db, mm.initCfg.Environment)
	sqlManager.SetSQLRootPath(mm.initCfg.Filepath)
	sqlManager.SetLogger(mm.logger)

	if _, err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return errors.Wrap(err, "SQL file initialization failed")
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	migrations := make([]Migration, 0)
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
