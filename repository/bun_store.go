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
	"database/sql"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/tombstone/types"
)

// ErrUnsupportedOperator is returned for a Constraint whose Op is not one of
// the types.Op* operators.
var ErrUnsupportedOperator = errors.New("unsupported query operator")

// ErrNoDatabase is returned when a lazily bound store has no connection to use.
var ErrNoDatabase = errors.New("database not initialized")

// BunStore is a Store backed by a bun database or transaction.
type BunStore[M any] struct {
	db      bun.IDB
	resolve func() *bun.DB
	schema  Schema
}

var _ Store[struct{}] = (*BunStore[struct{}])(nil)

// NewBunStore returns a store for model M on db.
func NewBunStore[M any](db bun.IDB, s Schema) *BunStore[M] {
	if d, ok := db.(*bun.DB); ok && d == nil {
		db = nil
	}
	return &BunStore[M]{db: db, schema: s}
}

// NewLazyBunStore returns a store that calls resolve before every statement,
// so it follows reconnects of a shared connection. A nil result fails the
// statement with ErrNoDatabase.
func NewLazyBunStore[M any](resolve func() *bun.DB, s Schema) *BunStore[M] {
	return &BunStore[M]{resolve: resolve, schema: s}
}

// WithTx returns a store that runs every statement inside tx.
func (s *BunStore[M]) WithTx(tx bun.Tx) *BunStore[M] {
	return &BunStore[M]{db: tx, schema: s.schema}
}

// RunInTx runs fn with a transaction scoped store. The transaction commits
// when fn returns nil.
func (s *BunStore[M]) RunInTx(ctx context.Context, fn func(ctx context.Context, store *BunStore[M]) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

func (s *BunStore[M]) conn() (bun.IDB, error) {
	if s.resolve == nil {
		if s.db == nil {
			return nil, ErrNoDatabase
		}
		return s.db, nil
	}
	if db := s.resolve(); db != nil {
		return db, nil
	}
	return nil, ErrNoDatabase
}

func (s *BunStore[M]) Find(ctx context.Context, q types.Query) ([]*M, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows := make([]*M, 0)
	query, err := applyQuery(db.NewSelect().Model(&rows), q)
	if err != nil {
		return nil, err
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BunStore[M]) FindOne(ctx context.Context, q types.Query) (*M, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	row := new(M)
	query, err := applyQuery(db.NewSelect().Model(row), q)
	if err != nil {
		return nil, err
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func (s *BunStore[M]) Count(ctx context.Context, q types.Query) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	query, err := applyWhere(db.NewSelect().Model((*M)(nil)), q.Where)
	if err != nil {
		return 0, err
	}
	return query.Count(ctx)
}

func (s *BunStore[M]) Save(ctx context.Context, row *M) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	fields, err := s.updatableColumns(db.Dialect())
	if err != nil {
		return err
	}
	features := db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return s.upsertOnConflict(ctx, db, row, fields)
	case features.Has(feature.InsertOnDuplicateKey):
		return s.upsertOnDuplicateKey(ctx, db, row, fields)
	default:
		return s.upsertFallback(ctx, db, row)
	}
}

func (s *BunStore[M]) MarkDeleted(ctx context.Context, id any, actor string, at time.Time) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	res, err := db.NewUpdate().
		Model((*M)(nil)).
		Set("? = ?", bun.Ident(s.schema.DeletedBy), actor).
		Set("? = ?", bun.Ident(s.schema.DeletedAt), at).
		Where("? = ?", bun.Ident(s.schema.PrimaryKey), id).
		Where("? IS NULL", bun.Ident(s.schema.DeletedBy)).
		Where("? IS NULL", bun.Ident(s.schema.DeletedAt)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// updatableColumns lists the data columns of M that an upsert overwrites.
func (s *BunStore[M]) updatableColumns(d schema.Dialect) ([]string, error) {
	table := d.Tables().Get(reflect.TypeOf((*M)(nil)).Elem())
	if table == nil {
		return nil, errors.Newf("no bun table for %T", (*M)(nil))
	}
	fields := make([]string, 0, len(table.DataFields))
	for _, f := range table.DataFields {
		if s.schema.isImmutable(f.Name) {
			continue
		}
		fields = append(fields, f.Name)
	}
	if len(fields) == 0 {
		return nil, errors.New("fields cannot be empty")
	}
	return fields, nil
}

func (s *BunStore[M]) upsertOnConflict(ctx context.Context, db bun.IDB, row *M, fields []string) error {
	query := db.NewInsert().
		Model(row).
		On("CONFLICT (?) DO UPDATE", bun.Ident(s.schema.PrimaryKey))
	for _, field := range fields {
		query = query.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

func (s *BunStore[M]) upsertOnDuplicateKey(ctx context.Context, db bun.IDB, row *M, fields []string) error {
	query := db.NewInsert().
		Model(row).
		On("DUPLICATE KEY UPDATE")
	for _, field := range fields {
		query = query.Set("? = VALUES(?)", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

// upsertFallback updates by primary key and inserts when nothing matched,
// both inside one transaction.
func (s *BunStore[M]) upsertFallback(ctx context.Context, db bun.IDB, row *M) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(row).WherePK().ExcludeColumn(s.schema.Immutable...).Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n > 0 {
			return err
		}
		_, err = tx.NewInsert().Model(row).Exec(ctx)
		return err
	})
}

func applyQuery(query *bun.SelectQuery, q types.Query) (*bun.SelectQuery, error) {
	query, err := applyWhere(query, q.Where)
	if err != nil {
		return nil, err
	}
	if len(q.Orders) > 0 {
		query = query.Order(q.Orders...)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	return query, nil
}

// applyWhere ANDs every constraint in column order so the generated SQL is
// stable. Only the operators declared in types are rendered; anything else is
// rejected before reaching the database.
func applyWhere(query *bun.SelectQuery, where types.Predicate) (*bun.SelectQuery, error) {
	for _, col := range where.Columns() {
		c := where[col]
		if !c.Op.IsValid() {
			return nil, errors.Wrapf(ErrUnsupportedOperator, "column %s: %q", col, string(c.Op))
		}
		switch {
		case c.Unary():
			query = query.Where("? "+string(c.Op), bun.Ident(col))
		case c.Op == types.OpIn:
			if values, ok := c.Value.([]any); ok && len(values) == 0 {
				query = query.Where("1 = 0")
				continue
			}
			query = query.Where("? IN (?)", bun.Ident(col), bun.In(c.Value))
		default:
			query = query.Where("? "+string(c.Op)+" ?", bun.Ident(col), c.Value)
		}
	}
	return query, nil
}
