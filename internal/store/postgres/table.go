// Package postgres is the gorm store backend. Unique constraints and
// secondary indexes are real Postgres indexes created by Migrate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dom/twitter-clone/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Table[T any] struct {
	db     *gorm.DB
	schema store.Schema
}

func NewTable[T any](db *gorm.DB, schema store.Schema) *Table[T] {
	return &Table[T]{db: db, schema: schema}
}

func (t *Table[T]) table(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.schema.Name)
}

func (t *Table[T]) Put(ctx context.Context, v T, opts ...store.PutOption) error {
	o := store.ApplyPutOptions(opts)

	if len(o.UniqueOn) > 0 {
		for _, attr := range o.UniqueOn {
			if !slices.Contains(t.schema.Unique, attr) {
				return fmt.Errorf("%s: no unique index on %q", t.schema.Name, attr)
			}
		}

		res := t.table(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&v)
		if res.Error != nil {
			return fmt.Errorf("put %s item: %w", t.schema.Name, res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrConditionFailed
		}
		return nil
	}

	keys := t.schema.KeyAttributes()
	columns := make([]clause.Column, len(keys))
	for i, k := range keys {
		columns[i] = clause.Column{Name: k}
	}

	err := t.table(ctx).Clauses(clause.OnConflict{
		Columns:   columns,
		UpdateAll: true,
	}).Create(&v).Error
	if err != nil {
		return fmt.Errorf("put %s item: %w", t.schema.Name, err)
	}
	return nil
}

func (t *Table[T]) Get(ctx context.Context, key store.Key) (T, error) {
	var out T

	conds := make(map[string]interface{}, len(key))
	for k, v := range key {
		conds[k] = v
	}

	err := t.table(ctx).Where(conds).Take(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, store.ErrNotFound
		}
		return out, fmt.Errorf("get %s item: %w", t.schema.Name, err)
	}
	return out, nil
}

func (t *Table[T]) Scan(ctx context.Context) ([]T, error) {
	var out []T
	if err := t.table(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.schema.Name, err)
	}
	return out, nil
}

func (t *Table[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	idx, err := t.schema.Index(q.Index)
	if err != nil {
		return nil, err
	}

	tx := t.table(ctx).Where(clause.Eq{Column: clause.Column{Name: idx.PartitionKey}, Value: q.Value})
	if idx.SortKey != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: idx.SortKey}, Desc: q.Descending})
	}

	var out []T
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", t.schema.Name, err)
	}
	return out, nil
}
