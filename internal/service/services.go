package service

import (
	"github.com/dom/twitter-clone/internal/auth"
	"github.com/dom/twitter-clone/internal/config"
	"github.com/dom/twitter-clone/internal/repository"
)

type Services struct {
	User  *UserService
	Tweet *TweetService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.SecretKey, cfg.AccessTokenTTL)

	return &Services{
		User:  NewUserService(repos.User, hasher, tokens),
		Tweet: NewTweetService(repos.Tweet),
	}
}
