// Package table implements the repositories on top of store tables.
package table

import "github.com/dom/twitter-clone/internal/store"

const (
	ByUsernameIndex = "ByUsername"
	ByUserIndex     = "ByUser"
)

func UsersSchema(name string) store.Schema {
	return store.Schema{
		Name:         name,
		PartitionKey: "user_id",
		Indexes: []store.Index{
			{Name: ByUsernameIndex, PartitionKey: "username"},
		},
		Unique: []string{"email"},
	}
}

func TweetsSchema(name string) store.Schema {
	return store.Schema{
		Name:         name,
		PartitionKey: "tweet_id",
		SortKey:      "created_at",
		Indexes: []store.Index{
			{Name: ByUserIndex, PartitionKey: "user_id", SortKey: "created_at"},
			{Name: ByUsernameIndex, PartitionKey: "username", SortKey: "created_at"},
		},
	}
}
