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

package domain

import "github.com/tomoncle/tombstone/types"

// Role is the access level carried by a User.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleUser
	RoleClient
	RoleSuperAdmin
)

var _ types.BaseEnum = RoleUnknown

var roleNames = map[Role]string{
	RoleAdmin:      "ADMIN",
	RoleUser:       "USER",
	RoleClient:     "CLIENT",
	RoleSuperAdmin: "SUPERADMIN",
}

var roleDescs = map[Role]string{
	RoleAdmin:      "administrator",
	RoleUser:       "regular user",
	RoleClient:     "api client",
	RoleSuperAdmin: "super administrator",
}

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleClient, RoleSuperAdmin}
}

// ParseRole resolves a stored role name.
func ParseRole(name string) (Role, bool) {
	return types.EnumByName(Roles(), name)
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) Number() int {
	if !r.IsValid() {
		return types.IllegalValue
	}
	return int(r)
}

func (r Role) Name() string {
	if !r.IsValid() {
		return types.IllegalName
	}
	return roleNames[r]
}

func (r Role) String() string { return r.Name() }

func (r Role) Desc() string {
	if !r.IsValid() {
		return types.IllegalDesc
	}
	return roleDescs[r]
}
