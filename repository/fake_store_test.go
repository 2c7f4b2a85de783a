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

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomoncle/tombstone/database"
	"github.com/tomoncle/tombstone/model"
	"github.com/tomoncle/tombstone/types"
)

// fakeStore is an in-memory Store of users that records every query it receives.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]model.User
	queries []types.Query

	findErr   error
	countErr  error
	saveErr   error
	deleteErr error
}

var _ Store[model.User] = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.User)}
}

func (s *fakeStore) record(q types.Query) {
	s.queries = append(s.queries, q.Clone())
}

func (s *fakeStore) lastQuery() types.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

// matches supports the equality and null checks the tests use.
func matches(row model.User, where types.Predicate) bool {
	for col, c := range where {
		var value any
		var isNull bool
		switch col {
		case "id":
			value = row.ID
		case "email":
			value = row.Email
		case "role":
			value = row.Role
		case "deleted_by":
			isNull = row.DeletedBy == nil
		case "deleted_date_time":
			isNull = row.DeletedDateTime == nil
		default:
			panic(fmt.Sprintf("fakeStore: unsupported column %s", col))
		}
		switch c.Op {
		case types.OpIsNull:
			if !isNull {
				return false
			}
		case types.OpNotNull:
			if isNull {
				return false
			}
		case types.OpEq:
			if value != c.Value {
				return false
			}
		default:
			panic(fmt.Sprintf("fakeStore: unsupported operator %s", c.Op))
		}
	}
	return true
}

func (s *fakeStore) Find(_ context.Context, q types.Query) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(q)
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]*model.User, 0)
	for _, row := range s.rows {
		if matches(row, q.Where) {
			r := row
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *fakeStore) FindOne(ctx context.Context, q types.Query) (*model.User, error) {
	rows, err := s.Find(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (s *fakeStore) Count(_ context.Context, q types.Query) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(q)
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, row := range s.rows {
		if matches(row, q.Where) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Save(_ context.Context, row *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.rows[row.ID] = *row
	return nil
}

func (s *fakeStore) MarkDeleted(_ context.Context, id any, actor string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	row, ok := s.rows[fmt.Sprint(id)]
	if !ok || row.DeletedBy != nil || row.DeletedDateTime != nil {
		return false, nil
	}
	row.DeletedBy, row.DeletedDateTime = &actor, &at
	s.rows[row.ID] = row
	return true, nil
}

type logEntry struct {
	level  string
	msg    string
	fields []interface{}
}

// recordingLogger captures log calls.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

var _ database.Logger = (*recordingLogger)(nil)

func (l *recordingLogger) add(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) SetLevel(database.LogLevel) {}

func (l *recordingLogger) Debug(msg string, fields ...interface{}) { l.add("debug", msg, fields) }

func (l *recordingLogger) Info(msg string, fields ...interface{}) { l.add("info", msg, fields) }

func (l *recordingLogger) Warn(msg string, fields ...interface{}) { l.add("warn", msg, fields) }

func (l *recordingLogger) Error(msg string, fields ...interface{}) { l.add("error", msg, fields) }

func (l *recordingLogger) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}
