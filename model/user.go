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
	"github.com/uptrace/bun"

	"github.com/tomoncle/tombstone/types"
)

// User is the users table row.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	AuditBase

	Email            string        `bun:"email,type:varchar(255),notnull,unique" json:"email"`
	DisplayName      string        `bun:"display_name,type:varchar(100),notnull,default:''" json:"display_name"`
	Role             string        `bun:"role,type:varchar(20),notnull" json:"role"`
	RefreshTokenHash *string       `bun:"refresh_token_hash,type:varchar(255)" json:"-"`
	Metadata         types.JSONMap `bun:"metadata,type:text" json:"metadata,omitempty"`
}
