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
	"github.com/tomoncle/tombstone/domain"
	"github.com/tomoncle/tombstone/model"
)

// AuditMapper copies audit fields between domain.Audit and the audit columns
// of model.AuditBase.
type AuditMapper struct{}

// ToPersistence writes a into the audit columns of base. The id is left alone.
func (AuditMapper) ToPersistence(a domain.Audit, base *model.AuditBase) {
	base.CreatedBy = a.CreatedBy()
	base.CreatedDateTime = a.CreatedDateTime()
	base.ModifiedBy = a.ModifiedBy()
	base.ModifiedDateTime = a.ModifiedDateTime()
	base.DeletedBy = a.DeletedBy()
	base.DeletedDateTime = a.DeletedDateTime()
}

// ToDomain rebuilds the audit through domain.CreateAudit.
func (AuditMapper) ToDomain(base *model.AuditBase) (domain.Audit, error) {
	return domain.CreateAudit(domain.AuditProps{
		CreatedBy:        base.CreatedBy,
		CreatedDateTime:  base.CreatedDateTime,
		ModifiedBy:       base.ModifiedBy,
		ModifiedDateTime: base.ModifiedDateTime,
		DeletedBy:        base.DeletedBy,
		DeletedDateTime:  base.DeletedDateTime,
	})
}
