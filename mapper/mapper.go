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

// Mapper converts entity E to model M and back.
type Mapper[E any, M any] interface {
	ToPersistence(entity E) *M
	ToDomain(model *M) (E, error)
}

// Func adapts a pair of functions to Mapper.
type Func[E any, M any] struct {
	To   func(E) *M
	From func(*M) (E, error)
}

func (f Func[E, M]) ToPersistence(entity E) *M { return f.To(entity) }

func (f Func[E, M]) ToDomain(model *M) (E, error) { return f.From(model) }

// ToDomainAll maps every model, stopping at the first failure.
func ToDomainAll[E any, M any](m Mapper[E, M], models []*M) ([]E, error) {
	out := make([]E, 0, len(models))
	for _, row := range models {
		e, err := m.ToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
