package table

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dom/twitter-clone/internal/config"
	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/repository"
	"github.com/dom/twitter-clone/internal/store"
	"github.com/dom/twitter-clone/internal/store/dynamo"
	"github.com/dom/twitter-clone/internal/store/memory"
	"github.com/dom/twitter-clone/internal/store/postgres"
	"gorm.io/gorm/logger"
)

func NewRepositories(users store.Table[domain.User], tweets store.Table[domain.Tweet]) *repository.Repositories {
	return &repository.Repositories{
		User:  NewUserRepository(users),
		Tweet: NewTweetRepository(tweets),
	}
}

// NewMemoryRepositories backs the repositories with in-process tables.
func NewMemoryRepositories(cfg *config.Config) *repository.Repositories {
	return NewRepositories(
		memory.NewTable[domain.User](UsersSchema(cfg.UsersTable)),
		memory.NewTable[domain.Tweet](TweetsSchema(cfg.TweetsTable)),
	)
}

// Open connects the configured backend once and returns repositories bound
// to it, plus a function releasing the connection.
func Open(ctx context.Context, cfg *config.Config) (*repository.Repositories, func() error, error) {
	users := UsersSchema(cfg.UsersTable)
	tweets := TweetsSchema(cfg.TweetsTable)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		return NewMemoryRepositories(cfg), noClose, nil

	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.ClientOptions{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			MaxAttempts:     cfg.StoreMaxAttempts,
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.CreateTables {
			for _, s := range []store.Schema{users, tweets} {
				if err := dynamo.EnsureTable(ctx, client, s); err != nil {
					return nil, nil, err
				}
			}
		}
		return NewRepositories(
			dynamo.NewTable[domain.User](client, users),
			dynamo.NewTable[domain.Tweet](client, tweets),
		), noClose, nil

	case config.BackendPostgres:
		db, err := postgres.NewConnection(cfg.DatabaseURL, logger.Warn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}

		if err := postgres.Migrate[domain.User](ctx, db, users); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		if err := postgres.Migrate[domain.Tweet](ctx, db, tweets); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return NewRepositories(
			postgres.NewTable[domain.User](db, users),
			postgres.NewTable[domain.Tweet](db, tweets),
		), sqlDB.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func noClose() error { return nil }
