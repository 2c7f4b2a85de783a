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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateClone(t *testing.T) {
	p := Predicate{"email": Eq("a@b.c")}
	c := p.Clone()
	c["role"] = Eq("ADMIN")

	assert.Len(t, p, 1)
	assert.Len(t, c, 2)
	assert.Nil(t, Predicate(nil).Clone())
}

func TestPredicateColumnsSorted(t *testing.T) {
	p := Predicate{"role": Eq("USER"), "email": Like("%@x"), "deleted_by": IsNull()}

	assert.Equal(t, []string{"deleted_by", "email", "role"}, p.Columns())
}

func TestConstraintUnary(t *testing.T) {
	assert.True(t, IsNull().Unary())
	assert.True(t, NotNull().Unary())
	assert.False(t, Eq(1).Unary())
	assert.Equal(t, []any{1, 2}, In(1, 2).Value)
}

func TestOperatorIsValid(t *testing.T) {
	for _, c := range []Constraint{Eq(1), Ne(1), Gt(1), Gte(1), Lt(1), Lte(1), Like("a%"), In(1), IsNull(), NotNull()} {
		assert.True(t, c.Op.IsValid(), string(c.Op))
	}
	assert.False(t, Operator("IS NOT NULL) OR (1 =").IsValid())
	assert.False(t, Operator("").IsValid())
}

func TestQueryCloneIsDeep(t *testing.T) {
	q := Query{Where: Predicate{"id": Eq("1")}, Orders: []string{"id ASC"}, Limit: 5}
	c := q.Clone()
	c.Where["email"] = Eq("x")
	c.Orders[0] = "email DESC"

	assert.Len(t, q.Where, 1)
	assert.Equal(t, "id ASC", q.Orders[0])
	assert.Equal(t, 5, c.Limit)
}

func TestQueryOrderBy(t *testing.T) {
	q := NewQuery(Predicate{"id": Eq("1")})
	o := q.OrderBy("email DESC")

	assert.Empty(t, q.Orders)
	assert.Equal(t, []string{"email DESC"}, o.Orders)
	assert.True(t, o.HasWhere())
	assert.False(t, Query{}.HasWhere())
}

func TestPageRequest(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 10, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())

	p = NewPageRequest(3, 20, Predicate{"role": Eq("USER")}, []string{"email ASC"})
	q := p.Query()
	assert.Equal(t, 40, q.Offset)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, []string{"email ASC"}, q.Orders)
	assert.Equal(t, Eq("USER"), q.Where["role"])
}

func TestPaginationPages(t *testing.T) {
	p := NewDefaultPagination[int](1, 10)
	assert.Equal(t, 0, p.Pages())
	assert.NotNil(t, p.Items)

	p.Total = 21
	assert.Equal(t, 3, p.Pages())
}

func TestJSONMap(t *testing.T) {
	m := JSONMap{"k": "v"}
	v, err := m.Value()
	assert.NoError(t, err)

	var out JSONMap
	assert.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)

	assert.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

func TestEnumByName(t *testing.T) {
	v, ok := EnumByName([]testEnum{1, 2}, " two ")
	assert.True(t, ok)
	assert.Equal(t, testEnum(2), v)

	_, ok = EnumByName([]testEnum{1}, "three")
	assert.False(t, ok)
}

type testEnum int

func (e testEnum) IsValid() bool  { return e == 1 || e == 2 }
func (e testEnum) Number() int    { return int(e) }
func (e testEnum) String() string { return e.Name() }
func (e testEnum) Desc() string   { return e.Name() }
func (e testEnum) Name() string {
	if e == 1 {
		return "ONE"
	}
	return "TWO"
}
