package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/twitter-clone/internal/domain"
	"github.com/dom/twitter-clone/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type TweetService struct {
	tweets   repository.TweetRepository
	now      func() time.Time
	validate *validator.Validate
}

func NewTweetService(tweets repository.TweetRepository) *TweetService {
	return &TweetService{
		tweets:   tweets,
		now:      time.Now,
		validate: newValidator(),
	}
}

// WithClock replaces the creation timestamp source.
func (s *TweetService) WithClock(now func() time.Time) *TweetService {
	s.now = now
	return s
}

type CreateTweetInput struct {
	Text string `json:"text" validate:"required,max=280"`
}

func (s *TweetService) Create(ctx context.Context, author *domain.User, input CreateTweetInput) (*domain.Tweet, error) {
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	tweet := &domain.Tweet{
		ID:        uuid.New().String(),
		CreatedAt: domain.FormatTimestamp(s.now()),
		UserID:    author.ID,
		Username:  author.Username,
		Text:      input.Text,
	}

	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}
	return tweet, nil
}

func (s *TweetService) Get(ctx context.Context, id, createdAt string) (*domain.Tweet, error) {
	return s.tweets.Get(ctx, id, createdAt)
}

func (s *TweetService) GetByID(ctx context.Context, id string) (*domain.Tweet, error) {
	return s.tweets.GetByID(ctx, id)
}

func (s *TweetService) List(ctx context.Context) ([]*domain.Tweet, error) {
	return s.tweets.List(ctx)
}

func (s *TweetService) ListByUser(ctx context.Context, userID string) ([]*domain.Tweet, error) {
	return s.tweets.ListByUser(ctx, userID)
}

func (s *TweetService) ListByUsername(ctx context.Context, username string) ([]*domain.Tweet, error) {
	return s.tweets.ListByUsername(ctx, username)
}

// ListMine lists the caller's own tweets, newest first.
func (s *TweetService) ListMine(ctx context.Context, caller *domain.User) ([]*domain.Tweet, error) {
	return s.tweets.ListByUser(ctx, caller.ID)
}
