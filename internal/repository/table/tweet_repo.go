package table

import (
	"context"
	"errors"

	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/store"
)

type TweetRepository struct {
	tweets store.Table[domain.Tweet]
}

func NewTweetRepository(tweets store.Table[domain.Tweet]) *TweetRepository {
	return &TweetRepository{tweets: tweets}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	return r.tweets.Put(ctx, *tweet)
}

func (r *TweetRepository) Get(ctx context.Context, id, createdAt string) (*domain.Tweet, error) {
	tweet, err := r.tweets.Get(ctx, store.Key{"tweet_id": id, "created_at": createdAt})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrTweetNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

// GetByID returns the newest item in the tweet_id partition. Ids are random
// UUIDs so the partition holds at most one tweet.
func (r *TweetRepository) GetByID(ctx context.Context, id string) (*domain.Tweet, error) {
	tweets, err := r.tweets.Query(ctx, store.Query{Value: id, Descending: true})
	if err != nil {
		return nil, err
	}
	if len(tweets) == 0 {
		return nil, domain.ErrTweetNotFound
	}
	return &tweets[0], nil
}

func (r *TweetRepository) List(ctx context.Context) ([]*domain.Tweet, error) {
	tweets, err := r.tweets.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pointers(tweets), nil
}

func (r *TweetRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Tweet, error) {
	return r.query(ctx, ByUserIndex, userID)
}

func (r *TweetRepository) ListByUsername(ctx context.Context, username string) ([]*domain.Tweet, error) {
	return r.query(ctx, ByUsernameIndex, username)
}

func (r *TweetRepository) query(ctx context.Context, index, value string) ([]*domain.Tweet, error) {
	tweets, err := r.tweets.Query(ctx, store.Query{Index: index, Value: value, Descending: true})
	if err != nil {
		return nil, err
	}
	return pointers(tweets), nil
}
