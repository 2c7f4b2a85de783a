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
	"strings"
	"time"

	ierr "github.com/tomoncle/tombstone/errors"
	"github.com/tomoncle/tombstone/types"
)

// AuditProps are the raw inputs to NewAudit. Optional fields are nil when absent.
type AuditProps struct {
	CreatedBy        string
	CreatedDateTime  time.Time
	ModifiedBy       *string
	ModifiedDateTime *time.Time
	DeletedBy        *string
	DeletedDateTime  *time.Time
}

// Audit records who created, last modified and logically deleted an entity.
// The creation pair is always set; the deletion pair is set together or not at all.
type Audit struct {
	createdBy        string
	createdDateTime  time.Time
	modifiedBy       *string
	modifiedDateTime *time.Time
	deletedBy        *string
	deletedDateTime  *time.Time
}

// ValidateAudit checks props against the audit invariants. Returned errors are
// marked ierr.ErrInvalidAuditState.
func ValidateAudit(p AuditProps) error {
	if strings.TrimSpace(p.CreatedBy) == "" {
		return auditError("createdBy is required")
	}
	if p.CreatedDateTime.IsZero() {
		return auditError("createdDateTime is required")
	}
	if (p.DeletedBy == nil) != (p.DeletedDateTime == nil) {
		return auditError("deletedBy and deletedDateTime must be set together")
	}
	if p.DeletedBy != nil && strings.TrimSpace(*p.DeletedBy) == "" {
		return auditError("deletedBy must not be blank")
	}
	if p.DeletedDateTime != nil && p.DeletedDateTime.IsZero() {
		return auditError("deletedDateTime must not be zero")
	}
	return nil
}

// CreateAudit builds an Audit or returns an InvalidAuditState error.
func CreateAudit(p AuditProps) (Audit, error) {
	if err := ValidateAudit(p); err != nil {
		return Audit{}, err
	}
	return Audit{
		createdBy:        p.CreatedBy,
		createdDateTime:  p.CreatedDateTime,
		modifiedBy:       cloneString(p.ModifiedBy),
		modifiedDateTime: cloneTime(p.ModifiedDateTime),
		deletedBy:        cloneString(p.DeletedBy),
		deletedDateTime:  cloneTime(p.DeletedDateTime),
	}, nil
}

// NewAudit is the Result-returning factory. Failures carry the validation
// message and the InvalidAuditState code.
func NewAudit(p AuditProps) types.Result[Audit] {
	a, err := CreateAudit(p)
	if err != nil {
		return types.Fail[Audit](err.Error(), ierr.Code(err))
	}
	return types.Ok(a)
}

// NewCreationAudit is shorthand for an audit with only the creation pair set.
func NewCreationAudit(by string, at time.Time) (Audit, error) {
	return CreateAudit(AuditProps{CreatedBy: by, CreatedDateTime: at})
}

func (a Audit) CreatedBy() string { return a.createdBy }

func (a Audit) CreatedDateTime() time.Time { return a.createdDateTime }

func (a Audit) ModifiedBy() *string { return cloneString(a.modifiedBy) }

func (a Audit) ModifiedDateTime() *time.Time { return cloneTime(a.modifiedDateTime) }

func (a Audit) DeletedBy() *string { return cloneString(a.deletedBy) }

func (a Audit) DeletedDateTime() *time.Time { return cloneTime(a.deletedDateTime) }

// IsZero reports whether a was never built by a factory.
func (a Audit) IsZero() bool { return a.createdBy == "" }

func (a Audit) IsDeleted() bool { return a.deletedBy != nil }

// Props returns the audit as factory inputs.
func (a Audit) Props() AuditProps {
	return AuditProps{
		CreatedBy:        a.createdBy,
		CreatedDateTime:  a.createdDateTime,
		ModifiedBy:       a.ModifiedBy(),
		ModifiedDateTime: a.ModifiedDateTime(),
		DeletedBy:        a.DeletedBy(),
		DeletedDateTime:  a.DeletedDateTime(),
	}
}

// Touch returns a copy recording a modification by actor at t.
func (a Audit) Touch(actor string, at time.Time) (Audit, error) {
	p := a.Props()
	p.ModifiedBy, p.ModifiedDateTime = &actor, &at
	return CreateAudit(p)
}

// MarkDeleted returns a copy with both deletion markers set. An already
// deleted audit is returned unchanged.
func (a Audit) MarkDeleted(actor string, at time.Time) (Audit, error) {
	if a.IsDeleted() {
		return a, nil
	}
	p := a.Props()
	p.DeletedBy, p.DeletedDateTime = &actor, &at
	return CreateAudit(p)
}

// Equal compares every audit field; times are compared as instants.
func (a Audit) Equal(b Audit) bool {
	return a.createdBy == b.createdBy &&
		a.createdDateTime.Equal(b.createdDateTime) &&
		equalString(a.modifiedBy, b.modifiedBy) &&
		equalTime(a.modifiedDateTime, b.modifiedDateTime) &&
		equalString(a.deletedBy, b.deletedBy) &&
		equalTime(a.deletedDateTime, b.deletedDateTime)
}

func auditError(msg string) error {
	return ierr.NewError("audit: " + msg).Mark(ierr.ErrInvalidAuditState)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
