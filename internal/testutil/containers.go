package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dom/twitter-clone/internal/store/dynamo"
	"github.com/dom/twitter-clone/internal/store/postgres"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dynamoLocalImage = "amazon/dynamodb-local:2.5.2"

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a PostgreSQL container. Tables are created by the caller
// through postgres.Migrate. Skipped in -short mode or without Docker.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipContainers(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_twitter_clone"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := postgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}
}

// TestDynamo manages a DynamoDB Local container
type TestDynamo struct {
	Container testcontainers.Container
	Client    *dynamodb.Client
	Endpoint  string
}

// NewTestDynamo starts DynamoDB Local in memory mode. Skipped in -short mode
// or without Docker.
func NewTestDynamo(t *testing.T) *TestDynamo {
	t.Helper()
	skipContainers(t)

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dynamoLocalImage,
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start dynamodb-local container: %v", err)
	}
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	if err != nil {
		t.Fatalf("failed to get dynamodb endpoint: %v", err)
	}

	client, err := dynamo.NewClient(ctx, dynamo.ClientOptions{
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "local",
		SecretAccessKey: "local",
		MaxAttempts:     3,
	})
	if err != nil {
		t.Fatalf("failed to create dynamodb client: %v", err)
	}

	return &TestDynamo{
		Container: container,
		Client:    client,
		Endpoint:  endpoint,
	}
}

func skipContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}
