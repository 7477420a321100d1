// Package dynamo is the DynamoDB store backend.
//
// UniqueOn is implemented with a transaction that writes the item together
// with one sentinel item per constrained value. A sentinel's partition key
// is "<attr>#<value>" and it carries the _constraint marker attribute. Scan,
// Get and Query on the primary key skip sentinels. Having no index
// attributes, they never appear in secondary indexes.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dom/twitter-clone/internal/store"
)

const (
	constraintAttr = "_constraint"

	reasonConditionalCheckFailed = "ConditionalCheckFailed"
	reasonTransactionConflict    = "TransactionConflict"

	// transaction conflicts are retried a few times before giving up
	maxTransactAttempts = 5
)

type Table[T any] struct {
	client API
	schema store.Schema
}

func NewTable[T any](client API, schema store.Schema) *Table[T] {
	return &Table[T]{client: client, schema: schema}
}

func (t *Table[T]) Put(ctx context.Context, v T, opts ...store.PutOption) error {
	o := store.ApplyPutOptions(opts)

	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s item: %w", t.schema.Name, err)
	}

	if len(o.UniqueOn) == 0 {
		_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(t.schema.Name),
			Item:      av,
		})
		if err != nil {
			return fmt.Errorf("put %s item: %w", t.schema.Name, err)
		}
		return nil
	}

	return t.putUnique(ctx, av, o.UniqueOn)
}

func (t *Table[T]) putUnique(ctx context.Context, av map[string]types.AttributeValue, attrs []string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(t.schema.PartitionKey))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	put := func(item map[string]types.AttributeValue) types.TransactWriteItem {
		return types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(t.schema.Name),
			Item:                     item,
			ConditionExpression:      expr.Condition(),
			ExpressionAttributeNames: expr.Names(),
		}}
	}

	items := []types.TransactWriteItem{put(av)}
	for _, attr := range attrs {
		s, ok := av[attr].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		items = append(items, put(t.sentinel(attr, s.Value)))
	}

	for attempt := 1; ; attempt++ {
		_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
		if err == nil {
			return nil
		}

		var canceled *types.TransactionCanceledException
		if !errors.As(err, &canceled) {
			return fmt.Errorf("put %s item: %w", t.schema.Name, err)
		}

		conflict := false
		for _, r := range canceled.CancellationReasons {
			switch aws.ToString(r.Code) {
			case reasonConditionalCheckFailed:
				return store.ErrConditionFailed
			case reasonTransactionConflict:
				conflict = true
			}
		}
		if !conflict || attempt >= maxTransactAttempts {
			return fmt.Errorf("put %s item: %w", t.schema.Name, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
		}
	}
}

func (t *Table[T]) sentinel(attr, value string) map[string]types.AttributeValue {
	id := &types.AttributeValueMemberS{Value: attr + "#" + value}
	item := map[string]types.AttributeValue{
		t.schema.PartitionKey: id,
		constraintAttr:        &types.AttributeValueMemberS{Value: attr},
	}
	if t.schema.SortKey != "" {
		item[t.schema.SortKey] = id
	}
	return item
}

func (t *Table[T]) Get(ctx context.Context, key store.Key) (T, error) {
	var out T

	k, err := attributevalue.MarshalMap(map[string]string(key))
	if err != nil {
		return out, fmt.Errorf("marshal %s key: %w", t.schema.Name, err)
	}

	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.schema.Name),
		Key:            k,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return out, fmt.Errorf("get %s item: %w", t.schema.Name, err)
	}
	if resp.Item == nil {
		return out, store.ErrNotFound
	}
	if _, ok := resp.Item[constraintAttr]; ok {
		return out, store.ErrNotFound
	}

	if err := attributevalue.UnmarshalMap(resp.Item, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s item: %w", t.schema.Name, err)
	}
	return out, nil
}

func (t *Table[T]) Scan(ctx context.Context) ([]T, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.AttributeNotExists(expression.Name(constraintAttr))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	p := dynamodb.NewScanPaginator(t.client, &dynamodb.ScanInput{
		TableName:                aws.String(t.schema.Name),
		FilterExpression:         expr.Filter(),
		ExpressionAttributeNames: expr.Names(),
		ConsistentRead:           aws.Bool(true),
	})

	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.schema.Name, err)
		}
		items = append(items, page.Items...)
	}

	return t.unmarshal(items)
}

func (t *Table[T]) Query(ctx context.Context, q store.Query) ([]T, error) {
	idx, err := t.schema.Index(q.Index)
	if err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(idx.PartitionKey).Equal(expression.Value(q.Value))).
		WithFilter(expression.AttributeNotExists(expression.Name(constraintAttr))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(t.schema.Name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if q.Index != "" {
		in.IndexName = aws.String(q.Index)
	} else {
		// global secondary indexes only support eventually consistent reads
		in.ConsistentRead = aws.Bool(true)
	}

	p := dynamodb.NewQueryPaginator(t.client, in)

	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", t.schema.Name, err)
		}
		items = append(items, page.Items...)
	}

	return t.unmarshal(items)
}

func (t *Table[T]) unmarshal(items []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s items: %w", t.schema.Name, err)
	}
	return out, nil
}
