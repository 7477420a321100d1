package api

import (
	"net/http"

	"github.com/dom/twitter-clone/internal/api/handlers"
	"github.com/dom/twitter-clone/internal/api/middleware"
	"github.com/dom/twitter-clone/internal/config"
	"github.com/dom/twitter-clone/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.User)
	userHandler := handlers.NewUserHandler(services.User)
	tweetHandler := handlers.NewTweetHandler(services.Tweet)
	requireAuth := middleware.Auth(services.User)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.With(requireAuth).Get("/me", userHandler.Me)
		r.Get("/{userID}", userHandler.Get)
	})

	r.Route("/tweets", func(r chi.Router) {
		r.Get("/", tweetHandler.List)
		r.Get("/by-user/{userID}", tweetHandler.ListByUser)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", tweetHandler.Create)
			r.Get("/me", tweetHandler.ListMine)
		})

		// The first segment is a tweet id, or a username for timelines.
		r.Route("/{idOrUsername}", func(r chi.Router) {
			r.Get("/", tweetHandler.GetByID)
			r.Get("/timelines/tweets", tweetHandler.ListByUsername)
			r.Get("/{createdAt}", tweetHandler.Get)
		})
	})

	return r
}
