package postgres

import (
	"context"
	"fmt"

	"github.com/dom/twitter-clone/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the table for T plus the unique and secondary indexes the
// schema declares.
func Migrate[T any](ctx context.Context, db *gorm.DB, schema store.Schema) error {
	tx := db.WithContext(ctx)

	if err := tx.Table(schema.Name).AutoMigrate(new(T)); err != nil {
		return fmt.Errorf("migrate %s: %w", schema.Name, err)
	}

	for _, attr := range schema.Unique {
		err := tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ? ON ? (?)",
			clause.Column{Name: indexName(schema.Name, attr, "key")},
			clause.Table{Name: schema.Name},
			clause.Column{Name: attr},
		).Error
		if err != nil {
			return fmt.Errorf("create unique index on %s.%s: %w", schema.Name, attr, err)
		}
	}

	for _, idx := range schema.Indexes {
		name := clause.Column{Name: indexName(schema.Name, idx.Name, "idx")}
		table := clause.Table{Name: schema.Name}
		var err error
		if idx.SortKey == "" {
			err = tx.Exec("CREATE INDEX IF NOT EXISTS ? ON ? (?)",
				name, table, clause.Column{Name: idx.PartitionKey}).Error
		} else {
			err = tx.Exec("CREATE INDEX IF NOT EXISTS ? ON ? (?, ? DESC)",
				name, table, clause.Column{Name: idx.PartitionKey}, clause.Column{Name: idx.SortKey}).Error
		}
		if err != nil {
			return fmt.Errorf("create index %s on %s: %w", idx.Name, schema.Name, err)
		}
	}

	return nil
}

func indexName(table, name, suffix string) string {
	return fmt.Sprintf("%s_%s_%s", table, name, suffix)
}
