package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dom/twitter-clone/internal/store"
	"github.com/dom/twitter-clone/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI fails every transaction with the queued errors, then succeeds.
// Items of successful transactions are served back by GetItem.
type fakeAPI struct {
	API
	transactErrs []error
	transacts    []*dynamodb.TransactWriteItemsInput
	items        map[string]map[string]types.AttributeValue
}

func fakeKey(item map[string]types.AttributeValue) string {
	var id, version string
	if s, ok := item["id"].(*types.AttributeValueMemberS); ok {
		id = s.Value
	}
	if s, ok := item["version"].(*types.AttributeValueMemberS); ok {
		version = s.Value
	}
	return id + "|" + version
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transacts = append(f.transacts, in)
	if len(f.transactErrs) == 0 {
		if f.items == nil {
			f.items = make(map[string]map[string]types.AttributeValue)
		}
		for _, it := range in.TransactItems {
			f.items[fakeKey(it.Put.Item)] = it.Put.Item
		}
		return &dynamodb.TransactWriteItemsOutput{}, nil
	}
	err := f.transactErrs[0]
	f.transactErrs = f.transactErrs[1:]
	return nil, err
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[fakeKey(in.Key)]}, nil
}

func canceled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}

func TestPutUnique(t *testing.T) {
	email := "a@x.com"
	rec := storetest.Record{ID: "a", Version: "1", Owner: "alice", Email: &email}

	tests := []struct {
		name      string
		errs      []error
		wantErr   error
		wantCalls int
	}{
		{
			name:      "success",
			wantCalls: 1,
		},
		{
			name:      "condition failed",
			errs:      []error{canceled("None", reasonConditionalCheckFailed)},
			wantErr:   store.ErrConditionFailed,
			wantCalls: 1,
		},
		{
			name:      "conflict retried",
			errs:      []error{canceled(reasonTransactionConflict, "None"), canceled(reasonTransactionConflict, "None")},
			wantCalls: 3,
		},
		{
			name:      "other error not retried",
			errs:      []error{errors.New("boom")},
			wantErr:   errors.New("boom"),
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{transactErrs: tt.errs}
			tbl := NewTable[storetest.Record](api, storetest.Schema("fake"))

			err := tbl.Put(context.Background(), rec, store.UniqueOn("email"))
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
			case errors.Is(tt.wantErr, store.ErrConditionFailed):
				assert.ErrorIs(t, err, store.ErrConditionFailed)
			default:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			}
			assert.Len(t, api.transacts, tt.wantCalls)
		})
	}
}

func TestPutUnique_Items(t *testing.T) {
	email := "a@x.com"
	api := &fakeAPI{}
	tbl := NewTable[storetest.Record](api, storetest.Schema("fake"))

	err := tbl.Put(context.Background(), storetest.Record{ID: "a", Version: "1", Owner: "alice", Email: &email}, store.UniqueOn("email"))
	require.NoError(t, err)
	require.Len(t, api.transacts, 1)

	items := api.transacts[0].TransactItems
	require.Len(t, items, 2)

	s := items[1].Put.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email#a@x.com"}, s["id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email#a@x.com"}, s["version"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email"}, s[constraintAttr])
	for _, it := range items {
		assert.NotNil(t, it.Put.ConditionExpression)
	}
}

func TestPutUnique_NilAttributeSkipsSentinel(t *testing.T) {
	api := &fakeAPI{}
	tbl := NewTable[storetest.Record](api, storetest.Schema("fake"))

	err := tbl.Put(context.Background(), storetest.Record{ID: "a", Version: "1", Owner: "alice"}, store.UniqueOn("email"))
	require.NoError(t, err)
	require.Len(t, api.transacts, 1)
	assert.Len(t, api.transacts[0].TransactItems, 1)
}

func TestGet_SkipsSentinel(t *testing.T) {
	email := "a@x.com"
	rec := storetest.Record{ID: "a", Version: "1", Owner: "alice", Email: &email}
	api := &fakeAPI{}
	tbl := NewTable[storetest.Record](api, storetest.Schema("fake"))
	ctx := context.Background()

	require.NoError(t, tbl.Put(ctx, rec, store.UniqueOn("email")))

	got, err := tbl.Get(ctx, store.Key{"id": "a", "version": "1"})
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = tbl.Get(ctx, store.Key{"id": "email#a@x.com", "version": "email#a@x.com"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateTableInput(t *testing.T) {
	in := createTableInput(storetest.Schema("records"))

	assert.Equal(t, "records", aws.ToString(in.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)

	var defs []string
	for _, d := range in.AttributeDefinitions {
		defs = append(defs, aws.ToString(d.AttributeName))
		assert.Equal(t, types.ScalarAttributeTypeS, d.AttributeType)
	}
	assert.Equal(t, []string{"id", "version", "owner"}, defs)

	require.Len(t, in.KeySchema, 2)
	assert.Equal(t, types.KeyTypeHash, in.KeySchema[0].KeyType)
	assert.Equal(t, types.KeyTypeRange, in.KeySchema[1].KeyType)

	require.Len(t, in.GlobalSecondaryIndexes, 1)
	gsi := in.GlobalSecondaryIndexes[0]
	assert.Equal(t, storetest.OwnerIndex, aws.ToString(gsi.IndexName))
	assert.Equal(t, types.ProjectionTypeAll, gsi.Projection.ProjectionType)
}
