// Package memory is an in-process store backend. Items are kept in their
// DynamoDB attribute form so marshalling behaves exactly as in production.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dom/twitter-clone/internal/store"
)

type item = map[string]types.AttributeValue

type Table[T any] struct {
	schema store.Schema

	mu    sync.RWMutex
	items map[string]item
	order []string
}

func NewTable[T any](schema store.Schema) *Table[T] {
	return &Table[T]{
		schema: schema,
		items:  make(map[string]item),
	}
}

func (t *Table[T]) Put(ctx context.Context, v T, opts ...store.PutOption) error {
	o := store.ApplyPutOptions(opts)

	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", t.schema.Name, err)
	}

	key, err := t.keyOf(av)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.items[key]
	if len(o.UniqueOn) > 0 {
		if exists {
			return store.ErrConditionFailed
		}
		for _, attr := range o.UniqueOn {
			want, ok := stringAttr(av, attr)
			if !ok {
				continue
			}
			for _, other := range t.items {
				if got, ok := stringAttr(other, attr); ok && got == want {
					return store.ErrConditionFailed
				}
			}
		}
	}

	if !exists {
		t.order = append(t.order, key)
	}
	t.items[key] = av
	return nil
}

func (t *Table[T]) Get(ctx context.Context, key store.Key) (T, error) {
	var out T

	k, err := t.keyOf(keyItem(key))
	if err != nil {
		return out, err
	}

	t.mu.RLock()
	av, ok := t.items[k]
	t.mu.RUnlock()
	if !ok {
		return out, store.ErrNotFound
	}

	if err := attributevalue.UnmarshalMap(av, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s item: %w", t.schema.Name, err)
	}
	return out, nil
}

func (t *Table[T]) Scan(ctx context.Context) ([]T, error) {
	t.mu.RLock()
	avs := make([]item, 0, len(t.order))
	for _, k := range t.order {
		avs = append(avs, t.items[k])
	}
	t.mu.RUnlock()

	return t.unmarshal(avs)
}

func (t *Table[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	idx, err := t.schema.Index(q.Index)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	var avs []item
	for _, k := range t.order {
		av := t.items[k]
		if v, ok := stringAttr(av, idx.PartitionKey); ok && v == q.Value {
			avs = append(avs, av)
		}
	}
	t.mu.RUnlock()

	if idx.SortKey != "" {
		sort.SliceStable(avs, func(i, j int) bool {
			a, _ := stringAttr(avs[i], idx.SortKey)
			b, _ := stringAttr(avs[j], idx.SortKey)
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}

	return t.unmarshal(avs)
}

func (t *Table[T]) unmarshal(avs []item) ([]T, error) {
	out := make([]T, 0, len(avs))
	if err := attributevalue.UnmarshalListOfMaps(avs, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s items: %w", t.schema.Name, err)
	}
	return out, nil
}

func (t *Table[T]) keyOf(av item) (string, error) {
	attrs := t.schema.KeyAttributes()
	parts := make([]string, len(attrs))
	for i, attr := range attrs {
		v, ok := stringAttr(av, attr)
		if !ok || v == "" {
			return "", fmt.Errorf("%s: missing key attribute %q", t.schema.Name, attr)
		}
		parts[i] = v
	}
	return strings.Join(parts, "\x00"), nil
}

func keyItem(key store.Key) item {
	av := make(item, len(key))
	for k, v := range key {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	return av
}

func stringAttr(av item, name string) (string, bool) {
	s, ok := av[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return s.Value, true
}
