// Package store defines the access contract against the key-value tables
// holding users and tweets. Backends live in the memory, dynamo and postgres
// subpackages and share the behavior pinned down by storetest.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when no item has the requested key.
	ErrNotFound = errors.New("item not found")
	// ErrConditionFailed is returned by Put when a UniqueOn constraint is
	// already satisfied by another item.
	ErrConditionFailed = errors.New("conditional write failed")
	// ErrUnknownIndex is returned by Query for an index the schema lacks.
	ErrUnknownIndex = errors.New("unknown index")
)

// Index is a secondary access path ordered by SortKey within PartitionKey.
type Index struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// Schema names a table and its key attributes. All key attributes hold
// strings. Unique lists the attributes Put may constrain with UniqueOn.
type Schema struct {
	Name         string
	PartitionKey string
	SortKey      string
	Indexes      []Index
	Unique       []string
}

// Index returns the named secondary index. The empty name resolves to the
// primary key.
func (s Schema) Index(name string) (Index, error) {
	if name == "" {
		return Index{PartitionKey: s.PartitionKey, SortKey: s.SortKey}, nil
	}
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return Index{}, fmt.Errorf("%w: %s on %s", ErrUnknownIndex, name, s.Name)
}

// KeyAttributes lists the primary key attribute names.
func (s Schema) KeyAttributes() []string {
	if s.SortKey == "" {
		return []string{s.PartitionKey}
	}
	return []string{s.PartitionKey, s.SortKey}
}

// Key identifies one item by its primary key attributes.
type Key map[string]string

// Query selects the items whose index partition key equals Value, ordered by
// the index sort key.
type Query struct {
	Index      string
	Value      string
	Descending bool
}

// Table is a handle on one logical table holding items of type T.
type Table[T any] interface {
	Put(ctx context.Context, item T, opts ...PutOption) error
	Get(ctx context.Context, key Key) (T, error)
	Scan(ctx context.Context) ([]T, error)
	Query(ctx context.Context, q Query) ([]T, error)
}

type PutOptions struct {
	UniqueOn []string
}

type PutOption func(*PutOptions)

// UniqueOn makes Put fail with ErrConditionFailed, writing nothing, if any
// stored item already carries the same value for one of attrs.
func UniqueOn(attrs ...string) PutOption {
	return func(o *PutOptions) {
		o.UniqueOn = append(o.UniqueOn, attrs...)
	}
}

func ApplyPutOptions(opts []PutOption) PutOptions {
	var o PutOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
