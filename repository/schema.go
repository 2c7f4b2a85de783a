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
	"github.com/tomoncle/tombstone/database"
	"github.com/tomoncle/tombstone/model"
)

// Schema names the columns the repository relies on. It replaces per-field
// metadata so stores and the soft-delete filter agree on column names. Tables
// using other delete marker names need the same names in
// database.DataMigrateConfig to get a soft-delete index.
type Schema struct {
	PrimaryKey string
	DeletedBy  string
	DeletedAt  string
	// Immutable columns are written on insert and never overwritten by an upsert.
	Immutable []string
}

// DefaultSchema matches the columns declared by model.AuditBase.
func DefaultSchema() Schema {
	return Schema{
		PrimaryKey: model.ColumnID,
		DeletedBy:  model.ColumnDeletedBy,
		DeletedAt:  model.ColumnDeletedDateTime,
		Immutable:  []string{model.ColumnCreatedBy, model.ColumnCreatedDateTime},
	}
}

// MigrateConfig returns cfg with its soft-delete index columns set to s.
func (s Schema) MigrateConfig(cfg database.DataMigrateConfig) database.DataMigrateConfig {
	cfg.DeletedByColumn, cfg.DeletedAtColumn = s.DeletedBy, s.DeletedAt
	return cfg
}

func (s Schema) isImmutable(column string) bool {
	for _, c := range s.Immutable {
		if c == column {
			return true
		}
	}
	return false
}
