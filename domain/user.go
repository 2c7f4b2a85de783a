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

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserProps are the inputs to NewUser. An empty ID is replaced by a new UUID.
type UserProps struct {
	ID               string `validate:"omitempty,uuid"`
	Email            string `validate:"required,email,max=255"`
	DisplayName      string `validate:"max=100"`
	Role             Role
	RefreshTokenHash *string
	Metadata         map[string]string
	Audit            Audit
}

// User is an account owned by the authentication layer.
type User struct {
	id               string
	email            string
	displayName      string
	role             Role
	refreshTokenHash *string
	metadata         types.JSONMap
	audit            Audit
}

// NewUser validates props and builds a User.
func NewUser(p UserProps) (*User, error) {
	p.Email = strings.TrimSpace(p.Email)
	if err := validate.Struct(p); err != nil {
		return nil, entityError(err)
	}
	if !p.Role.IsValid() {
		return nil, ierr.NewError(fmt.Sprintf("user: unknown role %d", p.Role)).Mark(ierr.ErrInvalidEntity)
	}
	if p.Audit.IsZero() {
		return nil, auditError("user audit is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return &User{
		id:               p.ID,
		email:            strings.ToLower(p.Email),
		displayName:      p.DisplayName,
		role:             p.Role,
		refreshTokenHash: cloneString(p.RefreshTokenHash),
		metadata:         types.JSONMap(p.Metadata).Clone(),
		audit:            p.Audit,
	}, nil
}

// RegisterUser creates a brand new user audited as created by actor at t.
func RegisterUser(email, displayName string, role Role, actor string, at time.Time) (*User, error) {
	audit, err := NewCreationAudit(actor, at)
	if err != nil {
		return nil, err
	}
	return NewUser(UserProps{Email: email, DisplayName: displayName, Role: role, Audit: audit})
}

func (u *User) ID() string { return u.id }

func (u *User) Email() string { return u.email }

func (u *User) DisplayName() string { return u.displayName }

func (u *User) Role() Role { return u.role }

func (u *User) RefreshTokenHash() *string { return cloneString(u.refreshTokenHash) }

func (u *User) Metadata() map[string]string { return u.metadata.Clone() }

func (u *User) Audit() Audit { return u.audit }

func (u *User) IsDeleted() bool { return u.audit.IsDeleted() }

// Props returns the user as factory inputs.
func (u *User) Props() UserProps {
	return UserProps{
		ID:               u.id,
		Email:            u.email,
		DisplayName:      u.displayName,
		Role:             u.role,
		RefreshTokenHash: u.RefreshTokenHash(),
		Metadata:         u.Metadata(),
		Audit:            u.audit,
	}
}

// WithRefreshTokenHash returns a copy holding hash (nil clears it), audited
// as modified by actor at t.
func (u *User) WithRefreshTokenHash(hash *string, actor string, at time.Time) (*User, error) {
	audit, err := u.audit.Touch(actor, at)
	if err != nil {
		return nil, err
	}
	p := u.Props()
	p.RefreshTokenHash, p.Audit = hash, audit
	return NewUser(p)
}

// WithRole returns a copy with a new role.
func (u *User) WithRole(role Role, actor string, at time.Time) (*User, error) {
	audit, err := u.audit.Touch(actor, at)
	if err != nil {
		return nil, err
	}
	p := u.Props()
	p.Role, p.Audit = role, audit
	return NewUser(p)
}

// MarkDeleted returns a logically deleted copy.
func (u *User) MarkDeleted(actor string, at time.Time) (*User, error) {
	audit, err := u.audit.MarkDeleted(actor, at)
	if err != nil {
		return nil, err
	}
	p := u.Props()
	p.Audit = audit
	return NewUser(p)
}

func entityError(err error) error {
	var verrs validator.ValidationErrors
	if ierr.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ierr.NewError(fmt.Sprintf("user: %s failed %q validation", fe.Field(), fe.Tag())).
			WithDetails(map[string]any{"field": fe.Field(), "tag": fe.Tag()}).
			Mark(ierr.ErrInvalidEntity)
	}
	return ierr.WithError(err).Mark(ierr.ErrInvalidEntity)
}
