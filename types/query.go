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

package types

import (
	"sort"

	"github.com/samber/lo"
)

// Operator is the comparison applied by a Constraint.
type Operator string

const (
	OpEq      Operator = "="
	OpNe      Operator = "<>"
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpIn      Operator = "IN"
	OpLike    Operator = "LIKE"
	OpIsNull  Operator = "IS NULL"
	OpNotNull Operator = "IS NOT NULL"
)

// Constraint is a single column condition inside a Predicate.
type Constraint struct {
	Op    Operator
	Value any
}

func Eq(v any) Constraint   { return Constraint{Op: OpEq, Value: v} }
func Ne(v any) Constraint   { return Constraint{Op: OpNe, Value: v} }
func Gt(v any) Constraint   { return Constraint{Op: OpGt, Value: v} }
func Gte(v any) Constraint  { return Constraint{Op: OpGte, Value: v} }
func Lt(v any) Constraint   { return Constraint{Op: OpLt, Value: v} }
func Lte(v any) Constraint  { return Constraint{Op: OpLte, Value: v} }
func Like(v any) Constraint { return Constraint{Op: OpLike, Value: v} }

// In matches any of the given values.
func In(values ...any) Constraint { return Constraint{Op: OpIn, Value: values} }

func IsNull() Constraint  { return Constraint{Op: OpIsNull} }
func NotNull() Constraint { return Constraint{Op: OpNotNull} }

var operators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpIn: {}, OpLike: {}, OpIsNull: {}, OpNotNull: {},
}

// IsValid reports whether o is one of the declared operators.
func (o Operator) IsValid() bool {
	_, ok := operators[o]
	return ok
}

// Unary reports whether the constraint takes no value.
func (c Constraint) Unary() bool {
	return c.Op == OpIsNull || c.Op == OpNotNull
}

// Predicate maps column names to constraints; all entries are ANDed.
type Predicate map[string]Constraint

// Clone returns a shallow copy so callers can extend it without touching the original.
func (p Predicate) Clone() Predicate {
	if p == nil {
		return nil
	}
	out := make(Predicate, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Columns returns the predicate columns in a stable order.
func (p Predicate) Columns() []string {
	cols := lo.Keys(p)
	sort.Strings(cols)
	return cols
}

// Query is the caller-supplied criteria for a find: an optional Where
// predicate plus ordering and paging.
type Query struct {
	Where  Predicate
	Orders []string // "id ASC", "email DESC"
	Limit  int
	Offset int
}

// NewQuery returns a Query filtered by where.
func NewQuery(where Predicate) Query {
	return Query{Where: where}
}

// HasWhere reports whether the query carries a where clause.
func (q Query) HasWhere() bool {
	return q.Where != nil
}

// Clone deep-copies the predicate and ordering.
func (q Query) Clone() Query {
	out := q
	out.Where = q.Where.Clone()
	if q.Orders != nil {
		out.Orders = append([]string(nil), q.Orders...)
	}
	return out
}

// OrderBy returns a copy of q with additional orderings.
func (q Query) OrderBy(orders ...string) Query {
	out := q.Clone()
	out.Orders = append(out.Orders, orders...)
	return out
}
