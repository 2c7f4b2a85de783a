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

package model

import (
	"time"

	"github.com/tomoncle/tombstone/database"
)

// Audit column names shared by every table. The delete markers are the ones
// the soft-delete index migration covers by default.
const (
	ColumnID               = "id"
	ColumnCreatedBy        = "created_by"
	ColumnCreatedDateTime  = "created_date_time"
	ColumnModifiedBy       = "modified_by"
	ColumnModifiedDateTime = "modified_date_time"
	ColumnDeletedBy        = database.DeletedByColumn
	ColumnDeletedDateTime  = database.DeletedDateTimeColumn
)

// AuditBase carries the primary key and audit columns. Embed it in every model.
type AuditBase struct {
	ID               string     `bun:"id,pk,type:varchar(36)" json:"id"`
	CreatedBy        string     `bun:"created_by,type:varchar(50),notnull" json:"created_by"`
	CreatedDateTime  time.Time  `bun:"created_date_time,notnull" json:"created_date_time"`
	ModifiedBy       *string    `bun:"modified_by,type:varchar(50)" json:"modified_by,omitempty"`
	ModifiedDateTime *time.Time `bun:"modified_date_time" json:"modified_date_time,omitempty"`
	DeletedBy        *string    `bun:"deleted_by,type:varchar(50)" json:"deleted_by,omitempty"`
	DeletedDateTime  *time.Time `bun:"deleted_date_time" json:"deleted_date_time,omitempty"`
}

// IsDeleted reports whether either delete marker is set.
func (m *AuditBase) IsDeleted() bool {
	return m.DeletedBy != nil || m.DeletedDateTime != nil
}
