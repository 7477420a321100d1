package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/store"
)

type UserRepository struct {
	users store.Table[domain.User]
}

func NewUserRepository(users store.Table[domain.User]) *UserRepository {
	return &UserRepository{users: users}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.users.Put(ctx, *user, store.UniqueOn("email"))
	if errors.Is(err, store.ErrConditionFailed) {
		return domain.ErrConflict
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.users.Get(ctx, store.Key{"user_id": id})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) ([]*domain.User, error) {
	users, err := r.users.Query(ctx, store.Query{Index: ByUsernameIndex, Value: username})
	if err != nil {
		return nil, fmt.Errorf("users by username: %w", err)
	}
	return pointers(users), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users, err := r.users.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pointers(users), nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
