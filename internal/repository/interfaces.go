package repository

import (
	"context"

	"github.com/dom/twitter-clone/internal/domain"
)

type UserRepository interface {
	// Create fails with domain.ErrConflict when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername returns every user carrying username, possibly none.
	GetByUsername(ctx context.Context, username string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// TweetRepository list methods other than List return newest first.
type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) error
	Get(ctx context.Context, id, createdAt string) (*domain.Tweet, error)
	GetByID(ctx context.Context, id string) (*domain.Tweet, error)
	List(ctx context.Context) ([]*domain.Tweet, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Tweet, error)
	ListByUsername(ctx context.Context, username string) ([]*domain.Tweet, error)
}

type Repositories struct {
	User  UserRepository
	Tweet TweetRepository
}
