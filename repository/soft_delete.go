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

import "github.com/tomoncle/tombstone/types"

// MergeSoftDelete returns a copy of q whose Where also requires both delete
// markers to be NULL. Caller constraints on the delete columns are replaced;
// every other caller constraint is kept. q is never modified.
func MergeSoftDelete(s Schema, q types.Query) types.Query {
	out := q.Clone()
	if out.Where == nil {
		out.Where = make(types.Predicate, 2)
	}
	out.Where[s.DeletedBy] = types.IsNull()
	out.Where[s.DeletedAt] = types.IsNull()
	return out
}

// IsSoftDeleteFiltered reports whether q already excludes deleted rows.
func IsSoftDeleteFiltered(s Schema, q types.Query) bool {
	by, ok := q.Where[s.DeletedBy]
	if !ok || by.Op != types.OpIsNull {
		return false
	}
	at, ok := q.Where[s.DeletedAt]
	return ok && at.Op == types.OpIsNull
}
