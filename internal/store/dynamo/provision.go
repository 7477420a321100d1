package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dom/twitter-clone/internal/store"
)

const tableReadyTimeout = 2 * time.Minute

// EnsureTable creates the table and its secondary indexes when it does not
// exist yet, then waits until it is active. Existing tables are left as is.
func EnsureTable(ctx context.Context, client API, schema store.Schema) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(schema.Name)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", schema.Name, err)
	}

	if _, err := client.CreateTable(ctx, createTableInput(schema)); err != nil {
		return fmt.Errorf("create table %s: %w", schema.Name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(schema.Name)}, tableReadyTimeout); err != nil {
		return fmt.Errorf("wait for table %s: %w", schema.Name, err)
	}
	return nil
}

func createTableInput(schema store.Schema) *dynamodb.CreateTableInput {
	seen := map[string]bool{}
	var defs []types.AttributeDefinition
	define := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		defs = append(defs, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	define(schema.PartitionKey)
	define(schema.SortKey)

	var gsis []types.GlobalSecondaryIndex
	for _, idx := range schema.Indexes {
		define(idx.PartitionKey)
		define(idx.SortKey)
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  keySchema(idx.PartitionKey, idx.SortKey),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(schema.Name),
		AttributeDefinitions:   defs,
		KeySchema:              keySchema(schema.PartitionKey, schema.SortKey),
		GlobalSecondaryIndexes: gsis,
		BillingMode:            types.BillingModePayPerRequest,
	}
}

func keySchema(partitionKey, sortKey string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{{AttributeName: aws.String(partitionKey), KeyType: types.KeyTypeHash}}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange})
	}
	return ks
}
