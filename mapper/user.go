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

package mapper

import (
	"fmt"

	"github.com/tomoncle/tombstone/domain"
	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/model"
	"github.com/tomoncle/tombstone/types"
)

// UserMapper maps domain.User to model.User.
type UserMapper struct {
	audit AuditMapper
}

var _ Mapper[*domain.User, model.User] = UserMapper{}

func NewUserMapper() UserMapper {
	return UserMapper{}
}

func (m UserMapper) ToPersistence(u *domain.User) *model.User {
	row := &model.User{
		Email:            u.Email(),
		DisplayName:      u.DisplayName(),
		Role:             u.Role().Name(),
		RefreshTokenHash: u.RefreshTokenHash(),
		Metadata:         types.JSONMap(u.Metadata()),
	}
	row.ID = u.ID()
	m.audit.ToPersistence(u.Audit(), &row.AuditBase)
	return row
}

func (m UserMapper) ToDomain(row *model.User) (*domain.User, error) {
	if row == nil {
		return nil, ierr.NewError("user: nil model").Mark(ierr.ErrInvalidEntity)
	}
	audit, err := m.audit.ToDomain(&row.AuditBase)
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(row.Role)
	if !ok {
		return nil, ierr.NewError(fmt.Sprintf("user: unknown stored role %q", row.Role)).
			WithDetails(map[string]any{"id": row.ID}).
			Mark(ierr.ErrInvalidEntity)
	}
	return domain.NewUser(domain.UserProps{
		ID:               row.ID,
		Email:            row.Email,
		DisplayName:      row.DisplayName,
		Role:             role,
		RefreshTokenHash: row.RefreshTokenHash,
		Metadata:         row.Metadata,
		Audit:            audit,
	})
}
